package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oskarkuder/lesson-notes-ai/internal/auth"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/service"
)

// PaymentHandler terminates the two checkout widget flows in one endpoint.
type PaymentHandler struct {
	payments service.PaymentService
	sessions service.SessionService
	resolver *userResolver
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments service.PaymentService, sessions service.SessionService, store auth.SessionStoreInterface) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		sessions: sessions,
		resolver: &userResolver{sessions: store},
	}
}

// PaymentRequest carries one checkout submission.
type PaymentRequest struct {
	Provider   model.PaymentProvider `json:"provider" validate:"required,oneof=card redirect"`
	CardNumber string                `json:"card_number,omitempty"`
	CardExpiry string                `json:"card_expiry,omitempty"`
	CardCVV    string                `json:"card_cvv,omitempty"`
	OrderID    string                `json:"order_id,omitempty"`
	SessionID  string                `json:"session_id,omitempty"`
}

// PaymentResponse reports the recorded attempt and the (possibly upgraded)
// user.
type PaymentResponse struct {
	Payment *model.Payment `json:"payment"`
	User    *UserResponse  `json:"user,omitempty"`
}

// Process godoc
// @Summary Process a pro-plan upgrade payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body PaymentRequest true "Payment data"
// @Success 200 {object} PaymentResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Router /payments [post]
// @Security BearerAuth
func (h *PaymentHandler) Process(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, tokenID, err := h.resolver.resolve(c)
	if err != nil {
		return toHTTPError(err)
	}

	payment, upgraded, err := h.payments.ProcessUpgrade(c.Request().Context(), user, tokenID, service.ChargeRequest{
		Provider:   req.Provider,
		CardNumber: req.CardNumber,
		CardExpiry: req.CardExpiry,
		CardCVV:    req.CardCVV,
		OrderID:    req.OrderID,
	})
	if err != nil {
		return toHTTPError(err)
	}

	// A successful payment lands the session back on idle.
	if req.SessionID != "" {
		if err := h.sessions.CompleteCheckout(c.Request().Context(), req.SessionID, upgraded); err != nil {
			return toHTTPError(err)
		}
	}

	return c.JSON(http.StatusOK, PaymentResponse{
		Payment: payment,
		User:    toUserResponse(upgraded),
	})
}
