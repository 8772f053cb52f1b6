package service

import (
	"context"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/repository"
	"github.com/oskarkuder/lesson-notes-ai/internal/session"
)

// SessionService drives the recording-session state machine for the API and
// bridges it to the note store where a transition needs persisted data.
type SessionService interface {
	Create(ctx context.Context, user *model.User, language string, limit int) (*session.Snapshot, error)
	Snapshot(ctx context.Context, id string) (*session.Snapshot, error)
	Start(ctx context.Context, id, mimeType string, confirm bool) error
	Chunk(ctx context.Context, id string, data []byte) error
	Stop(ctx context.Context, id string) error
	Reset(ctx context.Context, id string, confirm bool) error
	// History enters the history view and returns the hydrated note list.
	History(ctx context.Context, id string, confirm bool) ([]model.Note, error)
	Pricing(ctx context.Context, id string, confirm bool) error
	Checkout(ctx context.Context, id string) error
	BackToPricing(ctx context.Context, id string) error
	UpdateNote(ctx context.Context, id string, edited model.Note) error
	// Load brings a saved note (with audio) into the session as the working
	// note.
	Load(ctx context.Context, id string, noteID uint, confirm bool) error
	// Attach binds a freshly signed-in user to the session; any non-idle
	// view is superseded by a forced reset.
	Attach(ctx context.Context, id string, user *model.User) error
	// Detach clears the user on logout and forces a reset.
	Detach(ctx context.Context, id string) error
	// CompleteCheckout lands the session back on idle after payment.
	CompleteCheckout(ctx context.Context, id string, user *model.User) error
	Destroy(ctx context.Context, id string)
}

type sessionService struct {
	manager   *session.Manager
	notes     repository.NoteRepository
	freeLimit int
}

// NewSessionService builds a SessionService. freeLimit caps the recording
// length for free and guest users, in seconds.
func NewSessionService(manager *session.Manager, notes repository.NoteRepository, freeLimit int) SessionService {
	return &sessionService{manager: manager, notes: notes, freeLimit: freeLimit}
}

// clampLimit enforces plan gating on recording length: only pro users may
// pick unlimited (0) or anything beyond the free cap.
func (s *sessionService) clampLimit(user *model.User, limit int) int {
	if user != nil && user.IsPro() {
		return limit
	}
	if s.freeLimit > 0 && (limit == 0 || limit > s.freeLimit) {
		return s.freeLimit
	}
	return limit
}

func (s *sessionService) Create(ctx context.Context, user *model.User, language string, limit int) (*session.Snapshot, error) {
	if language == "" {
		language = "auto"
	}
	sess := s.manager.Create(user, language, s.clampLimit(user, limit))
	return s.manager.Snapshot(sess.ID)
}

func (s *sessionService) Snapshot(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.manager.Snapshot(id)
}

func (s *sessionService) Start(ctx context.Context, id, mimeType string, confirm bool) error {
	return s.manager.Start(ctx, id, session.NewBufferDevice(mimeType), confirm)
}

func (s *sessionService) Chunk(ctx context.Context, id string, data []byte) error {
	return s.manager.Chunk(id, data)
}

func (s *sessionService) Stop(ctx context.Context, id string) error {
	return s.manager.Stop(id)
}

func (s *sessionService) Reset(ctx context.Context, id string, confirm bool) error {
	return s.manager.Reset(id, confirm)
}

func (s *sessionService) History(ctx context.Context, id string, confirm bool) ([]model.Note, error) {
	snap, err := s.manager.Snapshot(id)
	if err != nil {
		return nil, err
	}
	if snap.User == nil {
		return nil, apperr.ErrLoginRequired
	}
	if err := s.manager.ShowHistory(id, confirm); err != nil {
		return nil, err
	}
	return s.notes.ListByUser(ctx, snap.User.ID)
}

func (s *sessionService) Pricing(ctx context.Context, id string, confirm bool) error {
	return s.manager.ShowPricing(id, confirm)
}

func (s *sessionService) Checkout(ctx context.Context, id string) error {
	return s.manager.Checkout(id)
}

func (s *sessionService) BackToPricing(ctx context.Context, id string) error {
	return s.manager.BackToPricing(id)
}

func (s *sessionService) UpdateNote(ctx context.Context, id string, edited model.Note) error {
	return s.manager.UpdateNote(id, edited)
}

func (s *sessionService) Load(ctx context.Context, id string, noteID uint, confirm bool) error {
	snap, err := s.manager.Snapshot(id)
	if err != nil {
		return err
	}
	if snap.User == nil {
		return apperr.ErrLoginRequired
	}
	note, audio, err := s.notes.GetWithAudio(ctx, noteID, snap.User.ID)
	if err != nil {
		return err
	}
	return s.manager.LoadNote(id, *note, audio, confirm)
}

func (s *sessionService) Attach(ctx context.Context, id string, user *model.User) error {
	return s.manager.SetUser(id, user)
}

func (s *sessionService) Detach(ctx context.Context, id string) error {
	return s.manager.ClearUser(id)
}

func (s *sessionService) CompleteCheckout(ctx context.Context, id string, user *model.User) error {
	return s.manager.CompleteCheckout(id, user)
}

func (s *sessionService) Destroy(ctx context.Context, id string) {
	s.manager.Destroy(id)
}
