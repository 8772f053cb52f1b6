package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Save(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	if args.Error(0) == nil && note.ID == 0 {
		note.ID = 10
	}
	return args.Error(0)
}

func (m *MockNoteRepository) ListByUser(ctx context.Context, userID uint) ([]model.Note, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteRepository) GetWithAudio(ctx context.Context, id, requestingUserID uint) (*model.Note, []byte, error) {
	args := m.Called(ctx, id, requestingUserID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var audio []byte
	if args.Get(1) != nil {
		audio = args.Get(1).([]byte)
	}
	return args.Get(0).(*model.Note), audio, args.Error(2)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id, requestingUserID uint) error {
	args := m.Called(ctx, id, requestingUserID)
	return args.Error(0)
}

// MockSessionStore is a mock implementation of auth.SessionStoreInterface.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Put(ctx context.Context, tokenID string, user *model.User) error {
	args := m.Called(ctx, tokenID, user)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, tokenID string) (*model.User, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// googleCredential builds an ID-token-shaped JWT; the signature is irrelevant
// because the decoder never verifies it.
func googleCredential(t *testing.T, sub, email string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "email": email, "name": "Test User"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unverified"))
	require.NoError(t, err)
	return token
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	ctx := context.Background()
	jwtService := auth.NewJWTService("test-secret")

	t.Run("first sign-in creates the user", func(t *testing.T) {
		users := new(MockUserRepository)
		notes := new(MockNoteRepository)
		sessions := new(MockSessionStore)
		svc := NewAuthService(users, notes, jwtService, sessions)

		users.On("FindByGoogleID", ctx, "sub-123").Return(nil, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "new@example.com" &&
				u.Plan == model.PlanFree &&
				u.GoogleID != nil && *u.GoogleID == "sub-123"
		})).Return(nil)
		sessions.On("Put", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("*model.User")).Return(nil)

		user, token, err := svc.GoogleSignIn(ctx, googleCredential(t, "sub-123", "new@example.com"))
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Username)
		assert.NotEmpty(t, token)

		// The issued token carries the user and a JTI matching the cached session.
		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		_, err = uuid.Parse(claims.ID)
		assert.NoError(t, err)

		users.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("returning user is found, not created", func(t *testing.T) {
		users := new(MockUserRepository)
		notes := new(MockNoteRepository)
		sessions := new(MockSessionStore)
		svc := NewAuthService(users, notes, jwtService, sessions)

		googleID := "sub-456"
		existing := &model.User{ID: 42, Username: "old@example.com", Plan: model.PlanPro, GoogleID: &googleID}
		users.On("FindByGoogleID", ctx, "sub-456").Return(existing, nil)
		sessions.On("Put", ctx, mock.AnythingOfType("string"), existing).Return(nil)

		user, token, err := svc.GoogleSignIn(ctx, googleCredential(t, "sub-456", "old@example.com"))
		require.NoError(t, err)
		assert.Equal(t, uint(42), user.ID)
		assert.NotEmpty(t, token)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate username surfaces the repository error", func(t *testing.T) {
		users := new(MockUserRepository)
		notes := new(MockNoteRepository)
		sessions := new(MockSessionStore)
		svc := NewAuthService(users, notes, jwtService, sessions)

		users.On("FindByGoogleID", ctx, "sub-789").Return(nil, nil)
		users.On("Create", ctx, mock.Anything).Return(apperr.ErrUsernameTaken)

		_, _, err := svc.GoogleSignIn(ctx, googleCredential(t, "sub-789", "taken@example.com"))
		assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
	})

	t.Run("garbage credential is rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		notes := new(MockNoteRepository)
		sessions := new(MockSessionStore)
		svc := NewAuthService(users, notes, jwtService, sessions)

		_, _, err := svc.GoogleSignIn(ctx, "not-a-jwt")
		assert.Error(t, err)
		users.AssertNotCalled(t, "FindByGoogleID", mock.Anything, mock.Anything)
	})
}

func TestAuthService_GuestToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	svc := NewAuthService(new(MockUserRepository), new(MockNoteRepository), jwtService, new(MockSessionStore))

	token, err := svc.GuestToken()
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.GuestUserID, claims.UserID)
	assert.Equal(t, "guest", claims.Username)
}

func TestAuthService_Bootstrap(t *testing.T) {
	ctx := context.Background()
	jwtService := auth.NewJWTService("test-secret")

	t.Run("cached identity hydrates notes", func(t *testing.T) {
		users := new(MockUserRepository)
		notes := new(MockNoteRepository)
		sessions := new(MockSessionStore)
		svc := NewAuthService(users, notes, jwtService, sessions)

		user := &model.User{ID: 5, Username: "u@example.com"}
		stored := []model.Note{{ID: 2, UserID: 5, Title: "Newest", CreatedAt: 200}, {ID: 1, UserID: 5, Title: "Older", CreatedAt: 100}}
		sessions.On("Get", ctx, "tok-1").Return(user, nil)
		notes.On("ListByUser", ctx, uint(5)).Return(stored, nil)

		got, list, err := svc.Bootstrap(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, user, got)
		assert.Len(t, list, 2)
		assert.Equal(t, "Newest", list[0].Title)
	})

	t.Run("no cached session means guest", func(t *testing.T) {
		users := new(MockUserRepository)
		notes := new(MockNoteRepository)
		sessions := new(MockSessionStore)
		svc := NewAuthService(users, notes, jwtService, sessions)

		sessions.On("Get", ctx, "tok-2").Return(nil, nil)

		got, list, err := svc.Bootstrap(ctx, "tok-2")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Nil(t, list)
		notes.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	})
}

func TestAuthService_UpgradePlan(t *testing.T) {
	ctx := context.Background()
	jwtService := auth.NewJWTService("test-secret")

	users := new(MockUserRepository)
	notes := new(MockNoteRepository)
	sessions := new(MockSessionStore)
	svc := NewAuthService(users, notes, jwtService, sessions)

	user := &model.User{ID: 9, Username: "payer@example.com", Plan: model.PlanFree}
	users.On("FindByID", ctx, uint(9)).Return(user, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 9 && u.Plan == model.PlanPro
	})).Return(nil)
	sessions.On("Put", ctx, "tok-9", mock.MatchedBy(func(u *model.User) bool {
		return u.Plan == model.PlanPro
	})).Return(nil)

	upgraded, err := svc.UpgradePlan(ctx, 9, "tok-9")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, upgraded.Plan)
	users.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	sessions := new(MockSessionStore)
	svc := NewAuthService(new(MockUserRepository), new(MockNoteRepository), jwtService, sessions)

	ctx := context.Background()
	sessions.On("Delete", ctx, "tok-gone").Return(nil)
	require.NoError(t, svc.Logout(ctx, "tok-gone"))
	sessions.AssertExpectations(t)
}
