package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/service"
)

// AuthHandler handles sign-in, bootstrap and logout endpoints.
type AuthHandler struct {
	authService    service.AuthService
	sessionService service.SessionService
	resolver       *userResolver
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, sessionService service.SessionService, sessions auth.SessionStoreInterface) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		resolver:       &userResolver{sessions: sessions},
	}
}

// GoogleSignInRequest carries the upstream-verified Google credential, plus
// an optional live session to attach the identity to.
type GoogleSignInRequest struct {
	Credential string `json:"credential" validate:"required"`
	SessionID  string `json:"session_id,omitempty"`
}

// LogoutRequest optionally names a live session to force-reset.
type LogoutRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	User        *UserResponse `json:"user,omitempty"`
}

// BootstrapResponse restores a cached identity and its note list.
type BootstrapResponse struct {
	User  *UserResponse `json:"user"`
	Notes []model.Note  `json:"notes"`
}

// GoogleSignIn godoc
// @Summary Sign in with a Google credential
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleSignInRequest true "Credential"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req GoogleSignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.authService.GoogleSignIn(c.Request().Context(), req.Credential)
	if err != nil {
		return toHTTPError(err)
	}

	// A login supersedes whatever the named session was showing.
	if req.SessionID != "" {
		if err := h.sessionService.Attach(c.Request().Context(), req.SessionID, user); err != nil {
			return toHTTPError(err)
		}
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken: token,
		User:        toUserResponse(user),
	})
}

// Guest godoc
// @Summary Issue a token for an unauthenticated session
// @Tags auth
// @Produce json
// @Success 200 {object} AuthResponse
// @Router /auth/guest [post]
func (h *AuthHandler) Guest(c echo.Context) error {
	token, err := h.authService.GuestToken()
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, AuthResponse{AccessToken: token})
}

// Bootstrap godoc
// @Summary Restore a cached session and hydrate its note list
// @Tags auth
// @Produce json
// @Success 200 {object} BootstrapResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /bootstrap [get]
// @Security BearerAuth
func (h *AuthHandler) Bootstrap(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	user, notes, err := h.authService.Bootstrap(c.Request().Context(), claims.ID)
	if err != nil {
		return toHTTPError(err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return c.JSON(http.StatusOK, BootstrapResponse{
		User:  toUserResponse(user),
		Notes: notes,
	})
}

// Me godoc
// @Summary Return the signed-in user
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
// @Security BearerAuth
func (h *AuthHandler) Me(c echo.Context) error {
	user, _, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout godoc
// @Summary Drop the cached identity and force-reset the live session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "Session to reset"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
// @Security BearerAuth
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims.ID); err != nil {
		return toHTTPError(err)
	}
	if req.SessionID != "" {
		if err := h.sessionService.Detach(c.Request().Context(), req.SessionID); err != nil {
			return toHTTPError(err)
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out successfully"})
}
