package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/repository"
)

// ChargeRequest carries the provider-specific fields of one checkout
// submission: card fields for the card form, the approved order ID for the
// redirect button.
type ChargeRequest struct {
	Provider   model.PaymentProvider
	CardNumber string
	CardExpiry string
	CardCVV    string
	OrderID    string
}

// Provider terminates in a single "payment succeeded" signal or an error.
// No webhook or receipt verification happens behind it.
type Provider interface {
	Charge(ctx context.Context, amount decimal.Decimal, currency string, req ChargeRequest) error
}

// cardProvider approves card-form submissions after local validation; the
// actual card network interaction lives in the widget upstream.
type cardProvider struct {
	validator *CardValidator
}

func (p *cardProvider) Charge(ctx context.Context, amount decimal.Decimal, currency string, req ChargeRequest) error {
	return p.validator.ValidateCard(req.CardNumber, req.CardExpiry, req.CardCVV)
}

// redirectProvider consumes the approval signal of a redirect-button flow.
type redirectProvider struct{}

func (p *redirectProvider) Charge(ctx context.Context, amount decimal.Decimal, currency string, req ChargeRequest) error {
	if req.OrderID == "" {
		return fmt.Errorf("%w: missing approved order", apperr.ErrPaymentDeclined)
	}
	return nil
}

// PaymentService processes pro-plan upgrade payments. Every attempt is
// recorded regardless of outcome; there are no automatic retries.
type PaymentService interface {
	ProcessUpgrade(ctx context.Context, user *model.User, tokenID string, req ChargeRequest) (*model.Payment, *model.User, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	auth      AuthService
	validator *CardValidator
	providers map[model.PaymentProvider]Provider
	price     decimal.Decimal
}

// NewPaymentService creates a payment service charging the given pro price.
func NewPaymentService(payments repository.PaymentRepository, auth AuthService, proPriceUSD string) PaymentService {
	price, err := decimal.NewFromString(proPriceUSD)
	if err != nil {
		log.Printf("invalid pro price %q, falling back to 19.00: %v", proPriceUSD, err)
		price = decimal.NewFromInt(19)
	}
	validator := NewCardValidator()
	return &paymentService{
		payments:  payments,
		auth:      auth,
		validator: validator,
		providers: map[model.PaymentProvider]Provider{
			model.ProviderCard:     &cardProvider{validator: validator},
			model.ProviderRedirect: &redirectProvider{},
		},
		price: price,
	}
}

func (s *paymentService) ProcessUpgrade(ctx context.Context, user *model.User, tokenID string, req ChargeRequest) (*model.Payment, *model.User, error) {
	if user == nil || user.ID == model.GuestUserID {
		return nil, nil, apperr.ErrLoginRequired
	}

	provider, ok := s.providers[req.Provider]
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown provider %q", apperr.ErrPaymentDeclined, req.Provider)
	}

	payment := &model.Payment{
		UserID:   user.ID,
		Amount:   s.price,
		Currency: "USD",
		Provider: req.Provider,
		Status:   model.PaymentStatusPending,
	}
	if req.Provider == model.ProviderCard {
		payment.MaskedCard = s.validator.MaskCardNumber(req.CardNumber)
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("record payment: %w", err)
	}

	if err := provider.Charge(ctx, s.price, payment.Currency, req); err != nil {
		payment.Status = model.PaymentStatusFailed
		payment.ErrorMessage = err.Error()
		if uerr := s.payments.Update(ctx, payment); uerr != nil {
			log.Printf("record failed payment %s: %v", payment.ID, uerr)
		}
		return payment, nil, err
	}

	payment.Status = model.PaymentStatusSucceeded
	if err := s.payments.Update(ctx, payment); err != nil {
		log.Printf("record succeeded payment %s: %v", payment.ID, err)
	}

	upgraded, err := s.auth.UpgradePlan(ctx, user.ID, tokenID)
	if err != nil {
		return payment, nil, err
	}
	return payment, upgraded, nil
}
