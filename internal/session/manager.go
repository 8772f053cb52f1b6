package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oskarkuder/lesson-notes-ai/internal/ai"
	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// User-facing messages. Every failure cause of a kind collapses into one
// message; the user re-attempts manually.
const (
	deviceAccessMessage     = "Microphone access was denied. Please enable it in your browser settings to use this feature."
	generationFailedMessage = "Sorry, I couldn't generate the notes. The recording might be too short or an error occurred."
)

// Session is one live recording/notes session. All field access goes through
// the manager under mu; HTTP requests for the same session may race.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	user     *model.User // nil while browsing as guest
	language string
	limit    int // seconds; 0 = unlimited

	device     CaptureDevice
	cancelTick context.CancelFunc

	// current session blob, kept until reset so an unsaved note can still
	// be saved with its audio
	audio     []byte
	audioMIME string

	// genSeq guards against a stale generation goroutine applying its
	// result after a forced reset started a newer cycle
	genSeq uint64
}

// Snapshot is a consistent read of a session for wire responses.
type Snapshot struct {
	ID       string
	Phase    Phase
	Elapsed  int
	Limit    int
	Language string
	Note     *model.Note
	Saved    bool
	Message  string
	User     *model.User
	HasAudio bool
}

// Manager owns all live sessions and drives their transitions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	generator    ai.Generator
	tickInterval time.Duration
}

// NewManager creates a session manager backed by the given generator.
func NewManager(generator ai.Generator) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		generator:    generator,
		tickInterval: time.Second,
	}
}

// Create registers a new idle session. user may be nil (guest).
func (m *Manager) Create(user *model.User, language string, limit int) *Session {
	s := &Session{
		ID:       uuid.New().String(),
		state:    Idle{},
		user:     user,
		language: language,
		limit:    limit,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	return s, nil
}

// Destroy tears a session down, releasing the timer and device even
// mid-recording.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.cleanupLocked()
	s.state = Idle{}
	s.mu.Unlock()
}

// Snapshot returns a consistent view of the session.
func (m *Manager) Snapshot(id string) (*Snapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		ID:       s.ID,
		Phase:    s.state.Phase(),
		Limit:    s.limit,
		Language: s.language,
		User:     s.user,
		HasAudio: len(s.audio) > 0,
	}
	switch st := s.state.(type) {
	case Recording:
		snap.Elapsed = st.Elapsed
		snap.Limit = st.Limit
	case Success:
		note := st.Note
		snap.Note = &note
		snap.Saved = st.Saved
	case Failed:
		snap.Message = st.Message
	}
	return snap, nil
}

// Start transitions Idle/Failed/Success -> Recording, acquiring the device
// and starting the one-second tick. Starting while already recording is a
// no-op. The unsaved-work gate applies when leaving Success.
func (m *Manager) Start(ctx context.Context, id string, device CaptureDevice, confirm bool) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, recording := s.state.(Recording); recording {
		return nil
	}
	if err := s.guardUnsavedLocked(confirm); err != nil {
		return err
	}

	if err := device.Acquire(ctx); err != nil {
		s.state = Failed{Message: deviceAccessMessage}
		return err
	}

	s.cleanupLocked()
	s.audio = nil
	s.audioMIME = ""
	s.device = device
	s.state = Recording{Elapsed: 0, Limit: s.limit}

	tctx, cancel := context.WithCancel(context.Background())
	s.cancelTick = cancel
	go m.runTicker(tctx, s)
	return nil
}

// Chunk appends captured audio; valid only while recording.
func (m *Manager) Chunk(id string, data []byte) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, recording := s.state.(Recording); !recording {
		return apperr.ErrInvalidTransition
	}
	return s.device.Write(data)
}

// Stop ends the recording and hands the blob to the AI boundary. Stopping a
// session that is not recording is a no-op.
func (m *Manager) Stop(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.stopLocked(s)
	return nil
}

func (m *Manager) runTicker(ctx context.Context, s *Session) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			m.tick(s)
			s.mu.Unlock()
		}
	}
}

// tick advances the elapsed counter by one second and fires the automatic
// stop at the tick where elapsed reaches the limit. Limit 0 never stops.
func (m *Manager) tick(s *Session) {
	rec, ok := s.state.(Recording)
	if !ok {
		return
	}
	rec.Elapsed++
	s.state = rec
	if rec.Limit > 0 && rec.Elapsed >= rec.Limit {
		m.stopLocked(s)
	}
}

// stopLocked is idempotent: only a Recording session has anything to stop.
func (m *Manager) stopLocked(s *Session) {
	if _, recording := s.state.(Recording); !recording {
		return
	}
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	data, mime := s.device.Bytes()
	s.device.Release()
	s.device = nil
	s.audio = data
	s.audioMIME = mime
	s.state = Generating{}
	s.genSeq++
	go m.generate(s, s.genSeq, data, mime, s.language)
}

// generate runs the AI boundary call and applies the outcome, unless a
// forced reset discarded this cycle in the meantime.
func (m *Manager) generate(s *Session, seq uint64, audio []byte, mime, lang string) {
	result, err := m.generator.GenerateNotes(context.Background(), audio, mime, lang)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genSeq != seq {
		return
	}
	if _, generating := s.state.(Generating); !generating {
		return
	}
	if err != nil {
		s.state = Failed{Message: generationFailedMessage}
		return
	}

	ownerID := model.GuestUserID
	if s.user != nil {
		ownerID = s.user.ID
	}
	s.state = Success{
		Note: model.Note{
			UserID:        ownerID,
			Title:         result.Title,
			Summary:       result.Summary,
			KeyTopics:     result.KeyTopics,
			Transcription: result.Transcription,
			AudioMIME:     mime,
		},
		Saved: false,
	}
}

// Reset returns the session to Idle, discarding the working note and blob.
// Leaving Success with unsaved work requires confirm unless forced.
func (m *Manager) Reset(id string, confirm bool) error {
	return m.transition(id, confirm, func(s *Session) error {
		s.resetLocked()
		return nil
	})
}

// ForceReset resets without the unsaved-work gate: logout and a login that
// supersedes the current view go through here.
func (m *Manager) ForceReset(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	return nil
}

// ShowHistory enters the history view; the unsaved-work gate applies.
func (m *Manager) ShowHistory(id string, confirm bool) error {
	return m.transition(id, confirm, func(s *Session) error {
		s.state = History{}
		return nil
	})
}

// ShowPricing enters the pricing view; the unsaved-work gate applies.
func (m *Manager) ShowPricing(id string, confirm bool) error {
	return m.transition(id, confirm, func(s *Session) error {
		s.state = Pricing{}
		return nil
	})
}

// Checkout moves Pricing -> Checkout. The caller must have verified there is
// an authenticated user.
func (m *Manager) Checkout(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.(Pricing); !ok {
		return apperr.ErrInvalidTransition
	}
	if s.user == nil {
		return apperr.ErrLoginRequired
	}
	s.state = Checkout{}
	return nil
}

// BackToPricing returns from the payment view without paying.
func (m *Manager) BackToPricing(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.(Checkout); !ok {
		return apperr.ErrInvalidTransition
	}
	s.state = Pricing{}
	return nil
}

// CompleteCheckout lands back on Idle after a successful payment.
func (m *Manager) CompleteCheckout(id string, user *model.User) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user != nil {
		s.user = user
	}
	s.resetLocked()
	return nil
}

// UpdateNote replaces the working note's editable fields and marks the
// session unsaved; identity and ownership of the working note are kept.
func (m *Manager) UpdateNote(id string, edited model.Note) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Success)
	if !ok {
		return apperr.ErrInvalidTransition
	}
	edited.ID = cur.Note.ID
	edited.UserID = cur.Note.UserID
	edited.CreatedAt = cur.Note.CreatedAt
	edited.AudioMIME = cur.Note.AudioMIME
	s.state = Success{Note: edited, Saved: false}
	return nil
}

// LoadNote enters Success with a previously saved note and its audio.
func (m *Manager) LoadNote(id string, note model.Note, audio []byte, confirm bool) error {
	return m.transition(id, confirm, func(s *Session) error {
		s.audio = audio
		s.audioMIME = note.AudioMIME
		s.state = Success{Note: note, Saved: true}
		return nil
	})
}

// CurrentNote returns the working note and the session blob for saving.
func (m *Manager) CurrentNote(id string) (model.Note, []byte, error) {
	s, err := m.Get(id)
	if err != nil {
		return model.Note{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Success)
	if !ok {
		return model.Note{}, nil, apperr.ErrInvalidTransition
	}
	return cur.Note, s.audio, nil
}

// MarkSaved replaces the working note with its persisted form and clears the
// unsaved flag.
func (m *Manager) MarkSaved(id string, saved model.Note) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.(Success); !ok {
		return apperr.ErrInvalidTransition
	}
	s.state = Success{Note: saved, Saved: true}
	return nil
}

// SetUser attaches a signed-in user. A login superseding any non-idle view
// forces a reset, no confirmation asked.
func (m *Manager) SetUser(id string, user *model.User) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	if _, idle := s.state.(Idle); !idle {
		s.resetLocked()
	}
	return nil
}

// ClearUser detaches the user on logout and forces a reset.
func (m *Manager) ClearUser(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.resetLocked()
	return nil
}

// transition runs fn after the unsaved-work gate and recording teardown.
func (m *Manager) transition(id string, confirm bool, fn func(*Session) error) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardUnsavedLocked(confirm); err != nil {
		return err
	}
	s.cleanupLocked()
	return fn(s)
}

// guardUnsavedLocked is the single confirm-loss-of-unsaved-work gate reused
// by every transition that would discard an unsaved success state.
func (s *Session) guardUnsavedLocked(confirm bool) error {
	if cur, ok := s.state.(Success); ok && !cur.Saved && !confirm {
		return apperr.ErrUnsavedChanges
	}
	return nil
}

// cleanupLocked cancels the tick and releases the device. It runs on every
// exit path, including teardown and navigation away mid-recording.
func (s *Session) cleanupLocked() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	s.genSeq++ // discard any in-flight generation result
}

func (s *Session) resetLocked() {
	s.cleanupLocked()
	s.audio = nil
	s.audioMIME = ""
	s.state = Idle{}
}
