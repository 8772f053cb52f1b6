package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// GoogleClaims is the subset of a Google ID token payload this service
// trusts: the stable subject ID and the email used as the username.
type GoogleClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// DecodeGoogleCredential decodes a Google ID token payload WITHOUT verifying
// its signature. Verification is assumed to happen upstream, where the
// sign-in widget talks to Google directly; accepting the payload as-is here
// is a known gap.
func DecodeGoogleCredential(credential string) (*GoogleClaims, error) {
	claims := &GoogleClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("decode google credential: %w", err)
	}
	if claims.Subject == "" && claims.RegisteredClaims.Subject != "" {
		claims.Subject = claims.RegisteredClaims.Subject
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("google credential missing sub or email")
	}
	return claims, nil
}
