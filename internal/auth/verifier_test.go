package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

func signBearer(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func newVerifier(t *testing.T, now time.Time) *auth.Verifier {
	t.Helper()
	v, err := auth.NewVerifier(context.Background(), &auth.VerifierConfig{
		Issuer:   "https://issuer.example.com",
		Audience: "aionia",
		Keyfunc:  func(*jwt.Token) (any, error) { return testSecret, nil },
		Methods:  []string{"HS256"},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)
	return v
}

func TestVerifier(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	v := newVerifier(t, now)

	valid := jwt.MapClaims{
		"iss":   "https://issuer.example.com",
		"aud":   "aionia",
		"sub":   "user-9",
		"email": "u@example.com",
		"exp":   now.Add(time.Hour).Unix(),
	}

	t.Run("valid", func(t *testing.T) {
		id, err := v.Verify(signBearer(t, valid))
		require.NoError(t, err)
		assert.Equal(t, &auth.Identity{UserID: "user-9", Email: "u@example.com"}, id)
	})

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{name: "expired", mutate: func(c jwt.MapClaims) { c["exp"] = now.Add(-time.Minute).Unix() }},
		{name: "no expiry", mutate: func(c jwt.MapClaims) { delete(c, "exp") }},
		{name: "wrong issuer", mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }},
		{name: "wrong audience", mutate: func(c jwt.MapClaims) { c["aud"] = "other" }},
		{name: "no subject", mutate: func(c jwt.MapClaims) { delete(c, "sub") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{}
			for k, val := range valid {
				claims[k] = val
			}
			tt.mutate(claims)

			_, err := v.Verify(signBearer(t, claims))
			assert.True(t, sheeterr.IsUnauthenticated(err), "got %v", err)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := v.Verify("  ")
		assert.True(t, sheeterr.IsUnauthenticated(err))
	})
}

func TestNewVerifier_RequiresJWKSURL(t *testing.T) {
	_, err := auth.NewVerifier(context.Background(), &auth.VerifierConfig{})
	assert.True(t, sheeterr.IsInvalidArgument(err))
}
