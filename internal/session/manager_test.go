package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarkuder/lesson-notes-ai/internal/ai"
	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// fakeDevice records lifecycle calls and returns canned audio.
type fakeDevice struct {
	mu         sync.Mutex
	acquireErr error
	acquired   bool
	released   bool
	written    []byte
	mime       string
}

func (d *fakeDevice) Acquire(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.acquireErr != nil {
		return d.acquireErr
	}
	d.acquired = true
	return nil
}

func (d *fakeDevice) Write(chunk []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.written = append(d.written, chunk...)
	return nil
}

func (d *fakeDevice) Bytes() ([]byte, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.written, d.mime
}

func (d *fakeDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
}

// fakeGenerator returns a fixed result or error.
type fakeGenerator struct {
	mu     sync.Mutex
	result *ai.Result
	err    error
	calls  int
}

func (g *fakeGenerator) GenerateNotes(ctx context.Context, audio []byte, mimeType, languageCode string) (*ai.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func okGenerator() *fakeGenerator {
	return &fakeGenerator{result: &ai.Result{
		Transcription: "the lecture",
		Title:         "Lecture",
		Summary:       "A short lecture.",
		KeyTopics:     model.KeyTopics{{Topic: "One", Points: []string{"a"}}},
	}}
}

func phase(t *testing.T, m *Manager, id string) Phase {
	t.Helper()
	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	return snap.Phase
}

func waitForPhase(t *testing.T, m *Manager, id string, want Phase) *Snapshot {
	t.Helper()
	assert.Eventually(t, func() bool {
		return phase(t, m, id) == want
	}, time.Second, 5*time.Millisecond)
	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	return snap
}

func TestManager_RecordStopGenerate(t *testing.T) {
	gen := okGenerator()
	m := NewManager(gen)
	s := m.Create(&model.User{ID: 7}, "en", 0)
	dev := &fakeDevice{mime: "audio/webm"}

	require.NoError(t, m.Start(context.Background(), s.ID, dev, false))
	assert.Equal(t, PhaseRecording, phase(t, m, s.ID))

	require.NoError(t, m.Chunk(s.ID, []byte("audio-bytes")))
	require.NoError(t, m.Stop(s.ID))

	snap := waitForPhase(t, m, s.ID, PhaseSuccess)
	require.NotNil(t, snap.Note)
	assert.Equal(t, "Lecture", snap.Note.Title)
	assert.Equal(t, uint(7), snap.Note.UserID)
	assert.Equal(t, "audio/webm", snap.Note.AudioMIME)
	assert.False(t, snap.Saved)
	assert.True(t, snap.HasAudio)
	assert.True(t, dev.released)
}

func TestManager_GuestNoteHasZeroOwner(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	dev := &fakeDevice{mime: "audio/webm"}

	require.NoError(t, m.Start(context.Background(), s.ID, dev, false))
	require.NoError(t, m.Chunk(s.ID, []byte("x")))
	require.NoError(t, m.Stop(s.ID))

	snap := waitForPhase(t, m, s.ID, PhaseSuccess)
	require.NotNil(t, snap.Note)
	assert.Equal(t, model.GuestUserID, snap.Note.UserID)
}

func TestManager_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: apperr.ErrGeneration}
	m := NewManager(gen)
	s := m.Create(nil, "auto", 0)
	dev := &fakeDevice{mime: "audio/webm"}

	require.NoError(t, m.Start(context.Background(), s.ID, dev, false))
	require.NoError(t, m.Stop(s.ID))

	snap := waitForPhase(t, m, s.ID, PhaseFailed)
	assert.Equal(t, generationFailedMessage, snap.Message)
	assert.Nil(t, snap.Note)

	// A failed session restarts without confirmation.
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))
	assert.Equal(t, PhaseRecording, phase(t, m, s.ID))
}

func TestManager_DeviceDenied(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	dev := &fakeDevice{acquireErr: apperr.ErrDeviceAccess}

	err := m.Start(context.Background(), s.ID, dev, false)
	assert.ErrorIs(t, err, apperr.ErrDeviceAccess)

	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.Equal(t, deviceAccessMessage, snap.Message)
}

func TestManager_TickCountsUp(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))

	s.mu.Lock()
	for i := 0; i < 3; i++ {
		m.tick(s)
	}
	rec, ok := s.state.(Recording)
	s.mu.Unlock()

	require.True(t, ok)
	assert.Equal(t, 3, rec.Elapsed)
}

func TestManager_UnlimitedNeverAutoStops(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))

	s.mu.Lock()
	for i := 0; i < 10000; i++ {
		m.tick(s)
	}
	_, recording := s.state.(Recording)
	s.mu.Unlock()

	assert.True(t, recording, "limit 0 must never fire the automatic stop")
}

func TestManager_AutoStopAtLimit(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 5)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))

	s.mu.Lock()
	for i := 0; i < 4; i++ {
		m.tick(s)
	}
	_, stillRecording := s.state.(Recording)
	m.tick(s) // fifth second reaches the limit
	_, generating := s.state.(Generating)
	s.mu.Unlock()

	assert.True(t, stillRecording)
	assert.True(t, generating)
	waitForPhase(t, m, s.ID, PhaseSuccess)
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))

	require.NoError(t, m.Stop(s.ID))
	require.NoError(t, m.Stop(s.ID)) // no second generation cycle
	require.NoError(t, m.Stop(s.ID))

	waitForPhase(t, m, s.ID, PhaseSuccess)
	gen := m.generator.(*fakeGenerator)
	gen.mu.Lock()
	defer gen.mu.Unlock()
	assert.Equal(t, 1, gen.calls)
}

func TestManager_StartWhileRecordingIsNoop(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	dev := &fakeDevice{mime: "audio/webm"}
	require.NoError(t, m.Start(context.Background(), s.ID, dev, false))

	other := &fakeDevice{mime: "audio/webm"}
	require.NoError(t, m.Start(context.Background(), s.ID, other, false))
	assert.False(t, other.acquired, "second start must not acquire a new device")
}

func TestManager_UnsavedWorkGate(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(&model.User{ID: 1}, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))
	require.NoError(t, m.Stop(s.ID))
	waitForPhase(t, m, s.ID, PhaseSuccess)

	// Every destructive transition is blocked until confirmed.
	assert.ErrorIs(t, m.Reset(s.ID, false), apperr.ErrUnsavedChanges)
	assert.ErrorIs(t, m.ShowHistory(s.ID, false), apperr.ErrUnsavedChanges)
	assert.ErrorIs(t, m.ShowPricing(s.ID, false), apperr.ErrUnsavedChanges)
	assert.ErrorIs(t, m.Start(context.Background(), s.ID, &fakeDevice{}, false), apperr.ErrUnsavedChanges)
	assert.Equal(t, PhaseSuccess, phase(t, m, s.ID))

	require.NoError(t, m.Reset(s.ID, true))
	assert.Equal(t, PhaseIdle, phase(t, m, s.ID))
}

func TestManager_SavedWorkNeedsNoConfirmation(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(&model.User{ID: 1}, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))
	require.NoError(t, m.Stop(s.ID))
	snap := waitForPhase(t, m, s.ID, PhaseSuccess)

	require.NoError(t, m.MarkSaved(s.ID, *snap.Note))
	require.NoError(t, m.Reset(s.ID, false))
	assert.Equal(t, PhaseIdle, phase(t, m, s.ID))
}

func TestManager_UpdateNoteMarksUnsaved(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(&model.User{ID: 1}, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))
	require.NoError(t, m.Stop(s.ID))
	snap := waitForPhase(t, m, s.ID, PhaseSuccess)

	saved := *snap.Note
	saved.ID = 42
	saved.CreatedAt = 1700000000000
	require.NoError(t, m.MarkSaved(s.ID, saved))

	edited := saved
	edited.ID = 99 // must not be able to re-point the working note
	edited.UserID = 12345
	edited.Title = "Edited title"
	require.NoError(t, m.UpdateNote(s.ID, edited))

	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.False(t, snap.Saved)
	assert.Equal(t, "Edited title", snap.Note.Title)
	assert.Equal(t, uint(42), snap.Note.ID)
	assert.Equal(t, uint(1), snap.Note.UserID)
	assert.Equal(t, int64(1700000000000), snap.Note.CreatedAt)

	assert.ErrorIs(t, m.Reset(s.ID, false), apperr.ErrUnsavedChanges)
}

func TestManager_ChunkOutsideRecording(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	assert.ErrorIs(t, m.Chunk(s.ID, []byte("x")), apperr.ErrInvalidTransition)
}

func TestManager_CheckoutFlow(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(&model.User{ID: 1}, "auto", 0)

	// Checkout is only reachable from pricing.
	assert.ErrorIs(t, m.Checkout(s.ID), apperr.ErrInvalidTransition)

	require.NoError(t, m.ShowPricing(s.ID, false))
	require.NoError(t, m.Checkout(s.ID))
	assert.Equal(t, PhaseCheckout, phase(t, m, s.ID))

	require.NoError(t, m.BackToPricing(s.ID))
	assert.Equal(t, PhasePricing, phase(t, m, s.ID))

	require.NoError(t, m.Checkout(s.ID))
	pro := &model.User{ID: 1, Plan: model.PlanPro}
	require.NoError(t, m.CompleteCheckout(s.ID, pro))

	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, model.PlanPro, snap.User.Plan)
}

func TestManager_CheckoutRequiresUser(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	require.NoError(t, m.ShowPricing(s.ID, false))
	assert.ErrorIs(t, m.Checkout(s.ID), apperr.ErrLoginRequired)
}

func TestManager_SetUserForcesResetOffIdle(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	require.NoError(t, m.ShowPricing(s.ID, false))

	require.NoError(t, m.SetUser(s.ID, &model.User{ID: 3}))
	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, uint(3), snap.User.ID)
}

func TestManager_ClearUserDiscardsUnsavedWork(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(&model.User{ID: 1}, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))
	require.NoError(t, m.Stop(s.ID))
	waitForPhase(t, m, s.ID, PhaseSuccess)

	require.NoError(t, m.ClearUser(s.ID))
	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.User)
	assert.False(t, snap.HasAudio)
}

func TestManager_StaleGenerationDiscarded(t *testing.T) {
	gate := make(chan struct{})
	slow := &gatedGenerator{inner: okGenerator(), gate: gate}
	m := NewManager(slow)
	s := m.Create(nil, "auto", 0)
	require.NoError(t, m.Start(context.Background(), s.ID, &fakeDevice{mime: "audio/webm"}, false))
	require.NoError(t, m.Stop(s.ID))
	assert.Equal(t, PhaseGenerating, phase(t, m, s.ID))

	// A forced reset while the call is in flight discards its result.
	require.NoError(t, m.ForceReset(s.ID))
	close(gate)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, PhaseIdle, phase(t, m, s.ID))
}

// gatedGenerator blocks until its gate closes, simulating a slow provider.
type gatedGenerator struct {
	inner ai.Generator
	gate  chan struct{}
}

func (g *gatedGenerator) GenerateNotes(ctx context.Context, audio []byte, mimeType, languageCode string) (*ai.Result, error) {
	<-g.gate
	return g.inner.GenerateNotes(ctx, audio, mimeType, languageCode)
}

func TestManager_LoadNote(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(&model.User{ID: 1}, "auto", 0)

	note := model.Note{ID: 9, UserID: 1, Title: "Old", Summary: "s", AudioMIME: "audio/webm", CreatedAt: 1}
	require.NoError(t, m.LoadNote(s.ID, note, []byte("blob"), false))

	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseSuccess, snap.Phase)
	assert.True(t, snap.Saved)
	assert.True(t, snap.HasAudio)
	assert.Equal(t, "Old", snap.Note.Title)
}

func TestManager_DestroyReleasesMidRecording(t *testing.T) {
	m := NewManager(okGenerator())
	s := m.Create(nil, "auto", 0)
	dev := &fakeDevice{mime: "audio/webm"}
	require.NoError(t, m.Start(context.Background(), s.ID, dev, false))

	m.Destroy(s.ID)
	dev.mu.Lock()
	released := dev.released
	dev.mu.Unlock()
	assert.True(t, released)

	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
}

func TestManager_UnknownSession(t *testing.T) {
	m := NewManager(okGenerator())
	_, err := m.Snapshot("nope")
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)
	assert.ErrorIs(t, m.Stop("nope"), apperr.ErrSessionNotFound)
	assert.True(t, errors.Is(m.Reset("nope", true), apperr.ErrSessionNotFound))
}
