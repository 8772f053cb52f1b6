package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNoteNotFound covers both a missing note and a note owned by someone
	// else. The two cases are deliberately indistinguishable so callers cannot
	// probe for the existence of other users' notes.
	ErrNoteNotFound = errors.New("note not found or access denied")
	// ErrOwnerRequired is returned when saving a note without an owner.
	ErrOwnerRequired = errors.New("a note must belong to a signed-in user")
	// ErrUsernameTaken is returned when a username collides with an existing user.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrGoogleIDTaken is returned when a Google identity is already linked.
	ErrGoogleIDTaken = errors.New("google account already linked to a user")
	// ErrUserNotFound is returned when a user lookup by ID fails.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned for unknown recording-session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrDeviceAccess is returned when the capture device cannot be acquired.
	ErrDeviceAccess = errors.New("capture device unavailable")
	// ErrGeneration is returned when the AI boundary fails for any reason.
	ErrGeneration = errors.New("note generation failed")
	// ErrUnsavedChanges guards transitions that would discard an unsaved note.
	ErrUnsavedChanges = errors.New("unsaved notes would be lost; confirm to proceed")
	// ErrInvalidTransition is returned for actions not valid in the current state.
	ErrInvalidTransition = errors.New("action not allowed in the current state")
	// ErrLoginRequired is returned when an operation needs an authenticated user.
	ErrLoginRequired = errors.New("sign in required")

	// ErrInvalidCard is returned when card validation fails.
	ErrInvalidCard = errors.New("invalid card")
	// ErrPaymentDeclined is returned when the payment provider rejects a charge.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrUpgradeRequired is returned when a feature is gated behind the pro plan.
	ErrUpgradeRequired = errors.New("pro plan required")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNoteNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOTE_NOT_FOUND")
	case errors.Is(err, ErrOwnerRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OWNER_REQUIRED")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrGoogleIDTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "GOOGLE_ID_TAKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrSessionNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "SESSION_NOT_FOUND")
	case errors.Is(err, ErrDeviceAccess):
		return NewHTTPError(http.StatusConflict, err.Error(), "DEVICE_ACCESS")
	case errors.Is(err, ErrGeneration):
		return NewHTTPError(http.StatusBadGateway, err.Error(), "GENERATION_FAILED")
	case errors.Is(err, ErrUnsavedChanges):
		return NewHTTPError(http.StatusConflict, err.Error(), "UNSAVED_CHANGES")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrLoginRequired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "LOGIN_REQUIRED")
	case errors.Is(err, ErrInvalidCard):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CARD")
	case errors.Is(err, ErrPaymentDeclined):
		return NewHTTPError(http.StatusPaymentRequired, err.Error(), "PAYMENT_DECLINED")
	case errors.Is(err, ErrUpgradeRequired):
		return NewHTTPError(http.StatusForbidden, err.Error(), "UPGRADE_REQUIRED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
