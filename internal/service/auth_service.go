package service

import (
	"context"
	"fmt"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/repository"
)

// AuthService handles sign-in, session bootstrap, and plan changes.
type AuthService interface {
	// GoogleSignIn trusts an upstream-verified credential payload: it finds
	// the linked user or creates one on first sign-in (email as username),
	// caches the identity, and returns an API token.
	GoogleSignIn(ctx context.Context, credential string) (*model.User, string, error)
	// GuestToken issues a token for an unauthenticated session. Guests carry
	// the zero user ID and never appear in the identity cache.
	GuestToken() (string, error)
	// Bootstrap restores a cached identity without re-verifying credentials
	// and hydrates the user's note list. (nil, nil, nil) means no session.
	Bootstrap(ctx context.Context, tokenID string) (*model.User, []model.Note, error)
	// Logout drops the cached identity.
	Logout(ctx context.Context, tokenID string) error
	// UpgradePlan moves the user to pro and refreshes the cached identity.
	UpgradePlan(ctx context.Context, userID uint, tokenID string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	notes    repository.NoteRepository
	jwt      *auth.JWTService
	sessions auth.SessionStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, notes repository.NoteRepository, jwt *auth.JWTService, sessions auth.SessionStoreInterface) AuthService {
	return &authService{users: users, notes: notes, jwt: jwt, sessions: sessions}
}

func (s *authService) GoogleSignIn(ctx context.Context, credential string) (*model.User, string, error) {
	claims, err := auth.DecodeGoogleCredential(credential)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByGoogleID(ctx, claims.Subject)
	if err != nil {
		return nil, "", fmt.Errorf("look up google identity: %w", err)
	}
	if user == nil {
		googleID := claims.Subject
		user = &model.User{
			Username: claims.Email,
			Plan:     model.PlanFree,
			GoogleID: &googleID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", err
		}
	}

	tokenID, token, err := s.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	if err := s.sessions.Put(ctx, tokenID, user); err != nil {
		return nil, "", fmt.Errorf("cache session: %w", err)
	}
	return user, token, nil
}

func (s *authService) GuestToken() (string, error) {
	_, token, err := s.jwt.GenerateAccessToken(model.GuestUserID, "guest")
	if err != nil {
		return "", fmt.Errorf("generate guest token: %w", err)
	}
	return token, nil
}

func (s *authService) Bootstrap(ctx context.Context, tokenID string) (*model.User, []model.Note, error) {
	user, err := s.sessions.Get(ctx, tokenID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, nil
	}
	notes, err := s.notes.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, notes, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string) error {
	return s.sessions.Delete(ctx, tokenID)
}

func (s *authService) UpgradePlan(ctx context.Context, userID uint, tokenID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Plan = model.PlanPro
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	if tokenID != "" {
		if err := s.sessions.Put(ctx, tokenID, user); err != nil {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
	}
	return user, nil
}
