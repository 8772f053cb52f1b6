package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
)

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// CardValidator validates card information before a charge is attempted.
type CardValidator struct{}

// NewCardValidator creates a new card validator.
func NewCardValidator() *CardValidator {
	return &CardValidator{}
}

// ValidateCard validates card number, expiry, and CVV.
func (v *CardValidator) ValidateCard(cardNumber, expiry, cvv string) error {
	cardNumber = strings.ReplaceAll(strings.ReplaceAll(cardNumber, " ", ""), "-", "")

	if !v.validateLuhn(cardNumber) {
		return apperr.ErrInvalidCard
	}
	if !expiryPattern.MatchString(expiry) {
		return apperr.ErrInvalidCard
	}
	if !v.validateExpiry(expiry) {
		return apperr.ErrInvalidCard
	}
	if !cvvPattern.MatchString(cvv) {
		return apperr.ErrInvalidCard
	}
	return nil
}

// validateLuhn checks the card number checksum.
func (v *CardValidator) validateLuhn(cardNumber string) bool {
	cardNumber = nonDigits.ReplaceAllString(cardNumber, "")
	if len(cardNumber) < 13 || len(cardNumber) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(cardNumber) - 1; i >= 0; i-- {
		digit := int(cardNumber[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// validateExpiry checks that MM/YY is the current month or later.
func (v *CardValidator) validateExpiry(expiry string) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	if year < 100 {
		year += 2000
	}

	expiryDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return expiryDate.After(time.Now().AddDate(0, -1, 0))
}

// MaskCardNumber masks a card number, showing only the last 4 digits.
func (v *CardValidator) MaskCardNumber(cardNumber string) string {
	cardNumber = strings.ReplaceAll(strings.ReplaceAll(cardNumber, " ", ""), "-", "")
	if len(cardNumber) < 4 {
		return "****"
	}
	return "****" + cardNumber[len(cardNumber)-4:]
}
