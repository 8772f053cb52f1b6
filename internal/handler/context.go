package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/session"
)

// claimsFrom extracts our claims from the echo-jwt token on the context.
func claimsFrom(c echo.Context) (*auth.Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// userResolver turns token claims into the cached identity. Guests resolve
// to a nil user; a revoked session resolves to nil as well, so a stale token
// behaves like being logged out.
type userResolver struct {
	sessions auth.SessionStoreInterface
}

func (r *userResolver) resolve(c echo.Context) (*model.User, string, error) {
	claims, err := claimsFrom(c)
	if err != nil {
		return nil, "", err
	}
	if claims.UserID == model.GuestUserID {
		return nil, claims.ID, nil
	}
	user, err := r.sessions.Get(c.Request().Context(), claims.ID)
	if err != nil {
		return nil, claims.ID, err
	}
	return user, claims.ID, nil
}

// toHTTPError converts a domain error into an echo error carrying the
// standard error envelope.
func toHTTPError(err error) *echo.HTTPError {
	mapped := apperr.MapErrorToHTTP(err)
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
}

// UserResponse is the wire form of a user.
type UserResponse struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Plan     model.Plan `json:"plan"`
}

func toUserResponse(u *model.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID, Username: u.Username, Plan: u.Plan}
}

// SessionResponse is the wire form of a session snapshot.
type SessionResponse struct {
	ID       string        `json:"id"`
	Phase    session.Phase `json:"phase"`
	Elapsed  int           `json:"elapsed"`
	Limit    int           `json:"limit"`
	Language string        `json:"language"`
	Note     *model.Note   `json:"note,omitempty"`
	Saved    bool          `json:"saved"`
	Message  string        `json:"message,omitempty"`
	User     *UserResponse `json:"user,omitempty"`
	HasAudio bool          `json:"has_audio"`
}

func toSessionResponse(snap *session.Snapshot) *SessionResponse {
	return &SessionResponse{
		ID:       snap.ID,
		Phase:    snap.Phase,
		Elapsed:  snap.Elapsed,
		Limit:    snap.Limit,
		Language: snap.Language,
		Note:     snap.Note,
		Saved:    snap.Saved,
		Message:  snap.Message,
		User:     toUserResponse(snap.User),
		HasAudio: snap.HasAudio,
	}
}
