package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{ErrNoteNotFound, http.StatusNotFound, "NOTE_NOT_FOUND"},
		{ErrUnsavedChanges, http.StatusConflict, "UNSAVED_CHANGES"},
		{ErrLoginRequired, http.StatusUnauthorized, "LOGIN_REQUIRED"},
		{ErrGeneration, http.StatusBadGateway, "GENERATION_FAILED"},
		{ErrPaymentDeclined, http.StatusPaymentRequired, "PAYMENT_DECLINED"},
		{ErrUpgradeRequired, http.StatusForbidden, "UPGRADE_REQUIRED"},
		{fmt.Errorf("wrapped: %w", ErrDeviceAccess), http.StatusConflict, "DEVICE_ACCESS"},
		{fmt.Errorf("something else"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.ToErrorResponse().Code)
		})
	}
}
