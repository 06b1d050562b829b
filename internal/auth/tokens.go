package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/uuid"
)

const (
	// StateTTL bounds the OAuth round trip
	StateTTL = 10 * time.Minute

	stateAudience   = "oauth-state"
	sessionAudience = "session"
	tokenIssuer     = "aionia-sheet"
)

// TokensConfig configures the HS256 token signer
type TokensConfig struct {
	Secret        []byte
	UUIDGenerator uuid.Generator   // Optional
	Now           func() time.Time // Optional
}

// Tokens signs the OAuth state parameter and the session cookie
type Tokens struct {
	secret []byte
	uuid   uuid.Generator
	now    func() time.Time
}

// State is the payload carried through the OAuth redirect
type State struct {
	Nonce    string
	Redirect string
}

type stateClaims struct {
	jwt.RegisteredClaims
	Redirect string `json:"redirect,omitempty"`
}

// NewTokens creates a token signer
func NewTokens(cfg *TokensConfig) (*Tokens, error) {
	if cfg == nil {
		return nil, sheeterr.MissingParam("TokensConfig")
	}
	if len(cfg.Secret) < 32 {
		return nil, sheeterr.InvalidParam("Secret", "must be at least 32 bytes")
	}

	t := &Tokens{
		secret: cfg.Secret,
		uuid:   cfg.UUIDGenerator,
		now:    cfg.Now,
	}
	if t.uuid == nil {
		t.uuid = uuid.NewGoogleUUIDGenerator()
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t, nil
}

// NewState signs a state token for a login that returns to redirect
func (t *Tokens) NewState(redirect string) (string, error) {
	now := t.now()
	claims := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{stateAudience},
			ID:        t.uuid.New(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
		},
		Redirect: redirect,
	}
	return t.sign(claims)
}

// ParseState validates a state token
func (t *Tokens) ParseState(token string) (*State, error) {
	var claims stateClaims
	if err := t.parse(token, stateAudience, &claims); err != nil {
		return nil, mapJWTError("state", err)
	}
	return &State{Nonce: claims.ID, Redirect: claims.Redirect}, nil
}

// NewSession signs a session cookie value referencing sessionID
func (t *Tokens) NewSession(sessionID string, expiresAt time.Time) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", sheeterr.InvalidArgument("session id is required")
	}
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{sessionAudience},
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(t.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return t.sign(claims)
}

// ParseSession validates a session cookie and returns the session id
func (t *Tokens) ParseSession(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := t.parse(token, sessionAudience, &claims); err != nil {
		return "", mapJWTError("session", err)
	}
	if claims.ID == "" {
		return "", sheeterr.Unauthenticated("session has no id")
	}
	return claims.ID, nil
}

func (t *Tokens) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", sheeterr.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

func (t *Tokens) parse(token, audience string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	return err
}
