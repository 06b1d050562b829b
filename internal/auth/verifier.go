package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

var defaultVerifierMethods = []string{"RS256", "ES256"}

// VerifierConfig configures bearer token verification
type VerifierConfig struct {
	JWKSURL  string
	Issuer   string // Optional
	Audience string // Optional

	// Keyfunc overrides the JWKS lookup
	Keyfunc jwt.Keyfunc
	// Methods lists accepted signing algorithms, RS256 and ES256 by default
	Methods []string
	Now     func() time.Time
}

// Verifier validates bearer JWTs issued by an identity provider
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier builds a verifier. Without a Keyfunc the JWKS at JWKSURL is fetched
// and refreshed in the background for the lifetime of ctx.
func NewVerifier(ctx context.Context, cfg *VerifierConfig) (*Verifier, error) {
	if cfg == nil {
		return nil, sheeterr.InvalidArgument("verifier config is required")
	}

	kf := cfg.Keyfunc
	if kf == nil {
		if strings.TrimSpace(cfg.JWKSURL) == "" {
			return nil, sheeterr.InvalidArgument("JWKS URL is required")
		}
		jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS from %s: %w", cfg.JWKSURL, err)
		}
		kf = jwks.Keyfunc
	}

	methods := cfg.Methods
	if len(methods) == 0 {
		methods = defaultVerifierMethods
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &Verifier{
		keyfunc: kf,
		parser:  jwt.NewParser(opts...),
	}, nil
}

type bearerClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Verify checks the token and returns its subject as the user id
func (v *Verifier) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, sheeterr.Unauthenticated("bearer token is required")
	}

	var claims bearerClaims
	if _, err := v.parser.ParseWithClaims(token, &claims, v.keyfunc); err != nil {
		return nil, mapJWTError("bearer token", err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, sheeterr.Unauthenticated("bearer token has no subject")
	}

	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
