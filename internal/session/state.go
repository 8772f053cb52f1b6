// Package session implements the lifecycle of one recording/notes session:
// idle -> recording -> generating -> success/failed, plus the history,
// pricing and checkout side views. It orchestrates the capture device, the
// one-second timer and the AI boundary; durable persistence stays outside.
package session

import "github.com/oskarkuder/lesson-notes-ai/internal/model"

// Phase names a state for wire responses and logging.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRecording  Phase = "recording"
	PhaseGenerating Phase = "generating"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
	PhaseHistory    Phase = "history"
	PhasePricing    Phase = "pricing"
	PhaseCheckout   Phase = "checkout"
)

// State is a sealed sum type: one struct per state, so a note can only exist
// in Success and a message only in Failed.
type State interface {
	Phase() Phase
}

// Idle is the resting state between sessions.
type Idle struct{}

// Recording carries the elapsed seconds and the configured limit.
// A limit of 0 means unlimited: no automatic stop, ever.
type Recording struct {
	Elapsed int
	Limit   int
}

// Generating means the AI boundary call is in flight.
type Generating struct{}

// Success holds the current working note. Saved is false until the note is
// persisted; transitions that would discard an unsaved note are gated.
type Success struct {
	Note  model.Note
	Saved bool
}

// Failed carries the single user-facing message all failure causes collapse
// into.
type Failed struct {
	Message string
}

// History is the saved-notes browsing view.
type History struct{}

// Pricing is the plan-comparison view.
type Pricing struct{}

// Checkout is the payment view; only reachable by authenticated users.
type Checkout struct{}

func (Idle) Phase() Phase       { return PhaseIdle }
func (Recording) Phase() Phase  { return PhaseRecording }
func (Generating) Phase() Phase { return PhaseGenerating }
func (Success) Phase() Phase    { return PhaseSuccess }
func (Failed) Phase() Phase     { return PhaseFailed }
func (History) Phase() Phase    { return PhaseHistory }
func (Pricing) Phase() Phase    { return PhasePricing }
func (Checkout) Phase() Phase   { return PhaseCheckout }
