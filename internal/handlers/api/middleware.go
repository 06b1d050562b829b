package api

import (
	"context"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

type identityKey struct{}

// IdentityFrom returns the caller attached by requireAuth
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*auth.Identity)
	return id, ok
}

// RecoverMiddleware turns panics into 500 responses
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("PANIC in %s %s: %v\nStack trace:\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("API: %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// requireAuth authenticates the caller and attaches the identity to the context
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := h.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	}
}

// authenticate accepts a bearer JWT or, failing that, the session cookie
func (h *Handler) authenticate(r *http.Request) (*auth.Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return nil, sheeterr.Unauthenticated("authorization header must be a bearer token")
		}
		if h.verifier == nil {
			return nil, sheeterr.Unauthenticated("bearer tokens are not accepted")
		}
		return h.verifier.Verify(token)
	}

	if h.loginEnabled() {
		if sess, err := h.currentSession(r); err == nil {
			return &auth.Identity{UserID: sess.UserID, Email: sess.Email}, nil
		} else if !sheeterr.IsUnauthenticated(err) && !sheeterr.IsNotFound(err) {
			return nil, err
		}
	}

	return nil, sheeterr.Unauthenticated("authentication required")
}

func identity(r *http.Request) *auth.Identity {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		panic("handler registered without requireAuth")
	}
	return id
}
