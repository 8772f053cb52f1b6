package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oskarkuder/lesson-notes-ai/internal/cache"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

const sessionKeyPrefix = "session:"

// SessionStoreInterface is the identity cache: a snapshot of the signed-in
// user keyed by token ID, treated as an already-valid session on bootstrap
// without re-verifying credentials.
type SessionStoreInterface interface {
	Put(ctx context.Context, tokenID string, user *model.User) error
	Get(ctx context.Context, tokenID string) (*model.User, error)
	Delete(ctx context.Context, tokenID string) error
}

// SessionStore is the redis-backed identity cache. Entries carry no TTL:
// sessions live until explicit logout, matching current behavior rather than
// adding an expiry the rest of the system does not expect.
type SessionStore struct {
	cache *cache.Client
}

var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

// Put stores the user snapshot under the token ID.
func (s *SessionStore) Put(ctx context.Context, tokenID string, user *model.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+tokenID, payload, 0)
}

// Get returns the cached user, or (nil, nil) when the session is absent.
func (s *SessionStore) Get(ctx context.Context, tokenID string) (*model.User, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+tokenID)
	if err != nil || data == nil {
		return nil, nil
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal session user: %w", err)
	}
	return &user, nil
}

// Delete removes the session on logout.
func (s *SessionStore) Delete(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+tokenID)
}
