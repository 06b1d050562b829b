// Package api serves the character storage and login endpoints over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/sessions"
	"github.com/KirkDiggler/aionia-sheet/internal/services"
	"github.com/KirkDiggler/aionia-sheet/internal/services/characters"
)

const (
	// DefaultSessionCookie names the login cookie
	DefaultSessionCookie = "aionia_session"

	stateCookie = "aionia_oauth_state"

	// DefaultMaxBodyBytes caps JSON and multipart request bodies
	DefaultMaxBodyBytes = 10 << 20
)

// BearerVerifier validates Authorization bearer tokens
type BearerVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// OAuthProvider runs the authorization code flow
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Identity, string, error)
	AccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Handler routes API requests
type Handler struct {
	characters   characters.Service
	verifier     BearerVerifier
	tokens       *auth.Tokens
	sessions     sessions.Repository
	oauth        OAuthProvider
	cookieName   string
	cookieSecure bool
	maxBodyBytes int64
	now          func() time.Time
}

// HandlerConfig holds configuration for the API handler.
// Verifier enables bearer auth; Tokens, Sessions and OAuth together enable cookie login.
type HandlerConfig struct {
	ServiceProvider *services.Provider // Required
	Verifier        BearerVerifier
	Tokens          *auth.Tokens
	Sessions        sessions.Repository
	OAuth           OAuthProvider
	CookieName      string
	CookieSecure    bool
	MaxBodyBytes    int64
	Now             func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg == nil || cfg.ServiceProvider == nil || cfg.ServiceProvider.CharacterService == nil {
		panic("service provider is required")
	}

	h := &Handler{
		characters:   cfg.ServiceProvider.CharacterService,
		verifier:     cfg.Verifier,
		tokens:       cfg.Tokens,
		sessions:     cfg.Sessions,
		oauth:        cfg.OAuth,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
		maxBodyBytes: cfg.MaxBodyBytes,
		now:          cfg.Now,
	}
	if h.cookieName == "" {
		h.cookieName = DefaultSessionCookie
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = DefaultMaxBodyBytes
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Routes returns the API mux wrapped in recovery and request logging
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/list-characters", h.requireAuth(h.listCharacters))
	mux.HandleFunc("GET /api/get-character", h.requireAuth(h.getCharacter))
	mux.HandleFunc("POST /api/save-character", h.requireAuth(h.saveCharacter))
	mux.HandleFunc("DELETE /api/delete-character", h.requireAuth(h.deleteCharacter))
	mux.HandleFunc("POST /api/upload-character-image", h.requireAuth(h.uploadImage))
	mux.HandleFunc("DELETE /api/delete-character-image", h.requireAuth(h.deleteImage))

	mux.HandleFunc("GET /api/auth/login", h.login)
	mux.HandleFunc("GET /api/auth/callback", h.callback)
	mux.HandleFunc("GET /api/auth/status", h.status)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
	mux.HandleFunc("GET /api/auth/token", h.token)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "endpoint not found")
	})

	return RecoverMiddleware(LoggingMiddleware(mux))
}

func (h *Handler) loginEnabled() bool {
	return h.tokens != nil && h.sessions != nil && h.oauth != nil
}
