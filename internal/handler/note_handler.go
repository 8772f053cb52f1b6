package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/service"
)

// NoteHandler serves the saved-notes endpoints.
type NoteHandler struct {
	notes    service.NoteService
	resolver *userResolver
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(notes service.NoteService, store auth.SessionStoreInterface) *NoteHandler {
	return &NoteHandler{notes: notes, resolver: &userResolver{sessions: store}}
}

// NoteWithAudioResponse is a note split from its audio blob; Audio is
// base64-encoded on the wire.
type NoteWithAudioResponse struct {
	Note  *model.Note `json:"note"`
	Audio []byte      `json:"audio"`
}

func noteID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid note id")
	}
	return uint(id), nil
}

// List godoc
// @Summary List the signed-in user's notes, newest first
// @Tags notes
// @Produce json
// @Success 200 {array} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Router /notes [get]
// @Security BearerAuth
func (h *NoteHandler) List(c echo.Context) error {
	user, _, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}
	var userID uint
	if user != nil {
		userID = user.ID
	}

	notes, err := h.notes.List(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

// Get godoc
// @Summary Fetch one note with its audio
// @Tags notes
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} NoteWithAudioResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [get]
// @Security BearerAuth
func (h *NoteHandler) Get(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return err
	}
	user, _, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}
	var userID uint
	if user != nil {
		userID = user.ID
	}

	note, audio, err := h.notes.Get(c.Request().Context(), id, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, NoteWithAudioResponse{Note: note, Audio: audio})
}

// Delete godoc
// @Summary Delete one note
// @Tags notes
// @Param id path int true "Note ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [delete]
// @Security BearerAuth
func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return err
	}
	user, _, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}
	var userID uint
	if user != nil {
		userID = user.ID
	}

	if err := h.notes.Delete(c.Request().Context(), id, userID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Export godoc
// @Summary Fetch a note for PDF export (pro plan only)
// @Tags notes
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} model.Note
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id}/export [get]
// @Security BearerAuth
func (h *NoteHandler) Export(c echo.Context) error {
	id, err := noteID(c)
	if err != nil {
		return err
	}
	user, _, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}

	note, err := h.notes.Export(c.Request().Context(), id, user)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, note)
}
