package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/service"
)

// maxChunkBytes bounds one uploaded audio chunk.
const maxChunkBytes = 8 << 20

// SessionHandler drives the recording-session state machine over HTTP.
type SessionHandler struct {
	sessions service.SessionService
	notes    service.NoteService
	resolver *userResolver
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions service.SessionService, notes service.NoteService, store auth.SessionStoreInterface) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		notes:    notes,
		resolver: &userResolver{sessions: store},
	}
}

// CreateSessionRequest configures a new session. Limit is in seconds, 0
// meaning unlimited (pro only; clamped otherwise).
type CreateSessionRequest struct {
	Language string `json:"language"`
	Limit    int    `json:"limit" validate:"gte=0"`
}

// StartRequest begins a recording.
type StartRequest struct {
	MimeType string `json:"mime_type"`
	Confirm  bool   `json:"confirm"`
}

// ConfirmRequest carries the confirm-loss-of-unsaved-work acknowledgement.
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// UpdateNoteRequest edits the working note prior to saving.
type UpdateNoteRequest struct {
	Title         string          `json:"title" validate:"required"`
	Summary       string          `json:"summary"`
	KeyTopics     model.KeyTopics `json:"key_topics"`
	Transcription string          `json:"transcription"`
}

// LoadNoteRequest loads a saved note into the session.
type LoadNoteRequest struct {
	NoteID  uint `json:"note_id" validate:"required"`
	Confirm bool `json:"confirm"`
}

// Create godoc
// @Summary Create a recording session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Session options"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /sessions [post]
// @Security BearerAuth
func (h *SessionHandler) Create(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, _, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}

	snap, err := h.sessions.Create(c.Request().Context(), user, req.Language, req.Limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(snap))
}

// Get godoc
// @Summary Return the current session state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /sessions/{id} [get]
// @Security BearerAuth
func (h *SessionHandler) Get(c echo.Context) error {
	snap, err := h.sessions.Snapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

// Start godoc
// @Summary Start recording
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body StartRequest true "Recording options"
// @Success 200 {object} SessionResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/start [post]
// @Security BearerAuth
func (h *SessionHandler) Start(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	id := c.Param("id")
	if err := h.sessions.Start(c.Request().Context(), id, req.MimeType, req.Confirm); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// Chunk godoc
// @Summary Upload a captured audio chunk
// @Tags sessions
// @Accept octet-stream
// @Param id path string true "Session ID"
// @Success 204
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/chunks [post]
// @Security BearerAuth
func (h *SessionHandler) Chunk(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxChunkBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.sessions.Chunk(c.Request().Context(), c.Param("id"), data); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stop godoc
// @Summary Stop recording and start note generation
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /sessions/{id}/stop [post]
// @Security BearerAuth
func (h *SessionHandler) Stop(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Stop(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// Reset godoc
// @Summary Return the session to idle
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {object} SessionResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/reset [post]
// @Security BearerAuth
func (h *SessionHandler) Reset(c echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	id := c.Param("id")
	if err := h.sessions.Reset(c.Request().Context(), id, req.Confirm); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// History godoc
// @Summary Enter the history view and list saved notes
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {array} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/history [post]
// @Security BearerAuth
func (h *SessionHandler) History(c echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	notes, err := h.sessions.History(c.Request().Context(), c.Param("id"), req.Confirm)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

// Pricing godoc
// @Summary Enter the pricing view
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {object} SessionResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/pricing [post]
// @Security BearerAuth
func (h *SessionHandler) Pricing(c echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	id := c.Param("id")
	if err := h.sessions.Pricing(c.Request().Context(), id, req.Confirm); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// Checkout godoc
// @Summary Proceed from pricing to checkout
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /sessions/{id}/checkout [post]
// @Security BearerAuth
func (h *SessionHandler) Checkout(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Checkout(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// CancelCheckout godoc
// @Summary Return from checkout to pricing
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/checkout/cancel [post]
// @Security BearerAuth
func (h *SessionHandler) CancelCheckout(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.BackToPricing(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// UpdateNote godoc
// @Summary Edit the working note
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body UpdateNoteRequest true "Edited note"
// @Success 200 {object} SessionResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/note [put]
// @Security BearerAuth
func (h *SessionHandler) UpdateNote(c echo.Context) error {
	var req UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("id")
	edited := model.Note{
		Title:         req.Title,
		Summary:       req.Summary,
		KeyTopics:     req.KeyTopics,
		Transcription: req.Transcription,
	}
	if err := h.sessions.UpdateNote(c.Request().Context(), id, edited); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// Save godoc
// @Summary Persist the working note under the signed-in user
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/save [post]
// @Security BearerAuth
func (h *SessionHandler) Save(c echo.Context) error {
	user, _, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}

	saved, err := h.notes.SaveCurrent(c.Request().Context(), c.Param("id"), user)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

// Load godoc
// @Summary Load a saved note into the session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body LoadNoteRequest true "Note to load"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /sessions/{id}/load [post]
// @Security BearerAuth
func (h *SessionHandler) Load(c echo.Context) error {
	var req LoadNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("id")
	if err := h.sessions.Load(c.Request().Context(), id, req.NoteID, req.Confirm); err != nil {
		return toHTTPError(err)
	}
	return h.respondSnapshot(c, id)
}

// Destroy godoc
// @Summary Tear the session down
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
// @Security BearerAuth
func (h *SessionHandler) Destroy(c echo.Context) error {
	h.sessions.Destroy(c.Request().Context(), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) respondSnapshot(c echo.Context, id string) error {
	snap, err := h.sessions.Snapshot(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}
