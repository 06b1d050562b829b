// Package sessions persists login sessions: one row per signed-in browser,
// holding the identity and the OAuth refresh token used to mint Drive access tokens.
package sessions

//go:generate mockgen -destination=mock/mock.go -package=mocksessions -source=interface.go
//go:generate mockgen -destination=mock/mock_time_provider.go -package=mocksessions -source=time_provider.go

import (
	"context"
	"time"
)

// Session is a server-side login session
type Session struct {
	ID           string
	UserID       string
	Email        string
	RefreshToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Repository defines the interface for session storage operations
type Repository interface {
	// Create stores a new session, filling in ID, CreatedAt and ExpiresAt when empty
	Create(ctx context.Context, session *Session) error

	// Get returns a live session; expired sessions are reported as not found
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session
	Delete(ctx context.Context, id string) error

	// DeleteExpired purges expired sessions and returns how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
