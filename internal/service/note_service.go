package service

import (
	"context"
	"fmt"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/repository"
	"github.com/oskarkuder/lesson-notes-ai/internal/session"
)

// NoteService exposes note persistence to the API, scoped to the requesting
// user. Saving goes through the session manager: only the working note of a
// successful generation can be persisted.
type NoteService interface {
	// SaveCurrent persists the session's working note under the user and
	// marks the session saved. Guests cannot save.
	SaveCurrent(ctx context.Context, sessionID string, user *model.User) (*model.Note, error)
	List(ctx context.Context, userID uint) ([]model.Note, error)
	Get(ctx context.Context, id, userID uint) (*model.Note, []byte, error)
	Delete(ctx context.Context, id, userID uint) error
	// Export returns the note for PDF rendering client-side; pro plan only.
	Export(ctx context.Context, id uint, user *model.User) (*model.Note, error)
}

type noteService struct {
	repo    repository.NoteRepository
	manager *session.Manager
}

// NewNoteService builds a NoteService.
func NewNoteService(repo repository.NoteRepository, manager *session.Manager) NoteService {
	return &noteService{repo: repo, manager: manager}
}

func (s *noteService) SaveCurrent(ctx context.Context, sessionID string, user *model.User) (*model.Note, error) {
	if user == nil || user.ID == model.GuestUserID {
		return nil, apperr.ErrLoginRequired
	}

	note, audio, err := s.manager.CurrentNote(sessionID)
	if err != nil {
		return nil, err
	}
	note.UserID = user.ID
	note.Audio = audio
	if err := s.repo.Save(ctx, &note); err != nil {
		return nil, err
	}

	saved := note.WithoutAudio()
	if err := s.manager.MarkSaved(sessionID, saved); err != nil {
		return nil, fmt.Errorf("mark saved: %w", err)
	}
	return &saved, nil
}

func (s *noteService) List(ctx context.Context, userID uint) ([]model.Note, error) {
	if userID == model.GuestUserID {
		return nil, apperr.ErrLoginRequired
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *noteService) Get(ctx context.Context, id, userID uint) (*model.Note, []byte, error) {
	if userID == model.GuestUserID {
		return nil, nil, apperr.ErrLoginRequired
	}
	return s.repo.GetWithAudio(ctx, id, userID)
}

func (s *noteService) Delete(ctx context.Context, id, userID uint) error {
	if userID == model.GuestUserID {
		return apperr.ErrLoginRequired
	}
	return s.repo.Delete(ctx, id, userID)
}

func (s *noteService) Export(ctx context.Context, id uint, user *model.User) (*model.Note, error) {
	if user == nil || user.ID == model.GuestUserID {
		return nil, apperr.ErrLoginRequired
	}
	if !user.IsPro() {
		return nil, apperr.ErrUpgradeRequired
	}
	note, _, err := s.repo.GetWithAudio(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	return note, nil
}
