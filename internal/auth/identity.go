// Package auth authenticates API callers. Bearer tokens are verified against a
// remote JWKS; browser logins go through Google OAuth and carry a signed session cookie.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

// Identity is the authenticated caller
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// mapJWTError translates jwt library errors to unauthenticated errors
func mapJWTError(what string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return sheeterr.Unauthenticated(what + " has expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return sheeterr.Unauthenticated(what + " signature is invalid")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return sheeterr.Unauthenticated(what + " was not issued for this service")
	default:
		return sheeterr.WrapWithCode(err, sheeterr.CodeUnauthenticated, what+" is invalid")
	}
}
