package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// noteListColumns omits the audio blob from list scans.
var noteListColumns = []string{
	"id", "user_id", "title", "summary", "key_topics", "transcription",
	"created_at", "audio_mime",
}

// NoteRepository defines note persistence operations. Ownership is enforced
// here, not in the handlers: reads and deletes for the wrong user fail with
// the same error as a missing row.
type NoteRepository interface {
	// Save inserts when note.ID is zero and overwrites otherwise. CreatedAt
	// is assigned on first save only; callers re-saving must pass the
	// complete note back, overwrite has no partial-patch semantics.
	Save(ctx context.Context, note *model.Note) error
	// ListByUser returns the user's notes newest first, audio omitted,
	// skipping legacy rows that predate the CreatedAt column.
	ListByUser(ctx context.Context, userID uint) ([]model.Note, error)
	// GetWithAudio returns the note split from its audio blob, or
	// apperr.ErrNoteNotFound when the row is missing or owned by another user.
	GetWithAudio(ctx context.Context, id, requestingUserID uint) (*model.Note, []byte, error)
	// Delete removes the note after the same combined ownership check.
	// Deleting twice reports not-found the second time.
	Delete(ctx context.Context, id, requestingUserID uint) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository builds a GORM-backed repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Save(ctx context.Context, note *model.Note) error {
	if note.UserID == model.GuestUserID {
		return apperr.ErrOwnerRequired
	}
	if note.CreatedAt == 0 {
		note.CreatedAt = time.Now().UnixMilli()
	}
	if note.ID == 0 {
		return r.db.WithContext(ctx).Create(note).Error
	}
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *noteRepository) ListByUser(ctx context.Context, userID uint) ([]model.Note, error) {
	notes := []model.Note{}
	err := r.db.WithContext(ctx).
		Select(noteListColumns).
		Where("user_id = ? AND created_at > 0", userID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) GetWithAudio(ctx context.Context, id, requestingUserID uint) (*model.Note, []byte, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.ErrNoteNotFound
		}
		return nil, nil, err
	}
	if note.UserID != requestingUserID {
		return nil, nil, apperr.ErrNoteNotFound
	}
	audio := note.Audio
	stripped := note.WithoutAudio()
	return &stripped, audio, nil
}

func (r *noteRepository) Delete(ctx context.Context, id, requestingUserID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note model.Note
		if err := tx.Select("id", "user_id").First(&note, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNoteNotFound
			}
			return err
		}
		if note.UserID != requestingUserID {
			return apperr.ErrNoteNotFound
		}
		return tx.Delete(&model.Note{}, id).Error
	})
}
