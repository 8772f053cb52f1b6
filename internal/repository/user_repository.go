package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	// Create inserts the user, enforcing username and Google-identity
	// uniqueness. The user's ID is assigned on success.
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	// FindByGoogleID returns (nil, nil) when no user is linked to the identity.
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	// Update overwrites the full record by primary key.
	Update(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.ErrUsernameTaken
		}
		if user.GoogleID != nil {
			if err := tx.Model(&model.User{}).Where("google_id = ?", *user.GoogleID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.ErrGoogleIDTaken
			}
		}
		return tx.Create(user).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
