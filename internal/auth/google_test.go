package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credentialWith(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	// Google signs with RS256; the decoder never checks, so any signature works.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("whatever"))
	require.NoError(t, err)
	return token
}

func TestDecodeGoogleCredential(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		cred := credentialWith(t, jwt.MapClaims{
			"sub":   "108256149",
			"email": "teacher@example.com",
			"name":  "A Teacher",
		})
		claims, err := DecodeGoogleCredential(cred)
		require.NoError(t, err)
		assert.Equal(t, "108256149", claims.Subject)
		assert.Equal(t, "teacher@example.com", claims.Email)
		assert.Equal(t, "A Teacher", claims.Name)
	})

	t.Run("missing email", func(t *testing.T) {
		cred := credentialWith(t, jwt.MapClaims{"sub": "108256149"})
		_, err := DecodeGoogleCredential(cred)
		assert.Error(t, err)
	})

	t.Run("missing sub", func(t *testing.T) {
		cred := credentialWith(t, jwt.MapClaims{"email": "teacher@example.com"})
		_, err := DecodeGoogleCredential(cred)
		assert.Error(t, err)
	})

	t.Run("not a jwt", func(t *testing.T) {
		_, err := DecodeGoogleCredential("definitely-not-a-token")
		assert.Error(t, err)
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenID, token, err := svc.GenerateAccessToken(12, "someone@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, "someone@example.com", claims.Username)
	assert.Equal(t, tokenID, claims.ID)

	extracted, err := svc.ExtractTokenID(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, token, err := svc.GenerateAccessToken(12, "someone@example.com")
	require.NoError(t, err)

	other := NewJWTService("different-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
