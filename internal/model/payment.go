package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentProvider identifies which checkout widget produced the attempt.
type PaymentProvider string

const (
	ProviderCard     PaymentProvider = "card"
	ProviderRedirect PaymentProvider = "redirect"
)

// PaymentStatus represents the status of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records one pro-plan upgrade attempt. Every attempt is recorded,
// successful or not.
type Payment struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uint            `json:"user_id" gorm:"not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Currency     string          `json:"currency" gorm:"size:3;not null;default:'USD'"`
	Provider     PaymentProvider `json:"provider" gorm:"type:varchar(20);not null"`
	Status       PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	MaskedCard   string          `json:"masked_card,omitempty" gorm:"size:24"`
	ErrorMessage string          `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
