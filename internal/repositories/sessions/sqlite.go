package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/sessions/migrations"
	"github.com/KirkDiggler/aionia-sheet/internal/uuid"
)

// DefaultTTL is how long a session lives when the caller does not set ExpiresAt
const DefaultTTL = 30 * 24 * time.Hour

// SQLiteConfig holds configuration for the SQLite repository
type SQLiteConfig struct {
	Path          string
	UUIDGenerator uuid.Generator // Optional
	TimeProvider  TimeProvider   // Optional
	TTL           time.Duration  // Optional, defaults to DefaultTTL
}

// SQLiteRepository implements Repository on a SQLite file
type SQLiteRepository struct {
	db            *sql.DB
	uuidGenerator uuid.Generator
	timeProvider  TimeProvider
	ttl           time.Duration
}

// OpenSQLite opens and migrates the sessions database
func OpenSQLite(ctx context.Context, cfg *SQLiteConfig) (*SQLiteRepository, error) {
	if cfg == nil {
		return nil, sheeterr.MissingParam("SQLiteConfig")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, sheeterr.MissingParam("Path")
	}

	dsn := filepath.Clean(cfg.Path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:            db,
		uuidGenerator: cfg.UUIDGenerator,
		timeProvider:  cfg.TimeProvider,
		ttl:           cfg.TTL,
	}
	if repo.uuidGenerator == nil {
		repo.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if repo.timeProvider == nil {
		repo.timeProvider = &RealTimeProvider{}
	}
	if repo.ttl <= 0 {
		repo.ttl = DefaultTTL
	}
	return repo, nil
}

// Close releases the underlying connection
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create stores a new session
func (r *SQLiteRepository) Create(ctx context.Context, session *Session) error {
	if session == nil {
		return sheeterr.InvalidArgument("session cannot be nil")
	}
	if strings.TrimSpace(session.UserID) == "" {
		return sheeterr.InvalidArgument("session user id is required")
	}

	now := r.timeProvider.Now()
	if session.ID == "" {
		session.ID = r.uuidGenerator.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, email, refresh_token, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Email,
		session.RefreshToken,
		session.CreatedAt.UTC().UnixMilli(),
		session.ExpiresAt.UTC().UnixMilli(),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return sheeterr.AlreadyExistsf("session '%s' already exists", session.ID)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get returns a live session by id
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, sheeterr.InvalidArgument("session id is required")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, email, refresh_token, created_at, expires_at
		 FROM sessions WHERE id = ?`,
		id,
	)

	var s Session
	var createdAt, expiresAt int64
	if err := row.Scan(&s.ID, &s.UserID, &s.Email, &s.RefreshToken, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sheeterr.NotFoundf("session '%s' not found", id)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.CreatedAt = time.UnixMilli(createdAt).UTC()
	s.ExpiresAt = time.UnixMilli(expiresAt).UTC()

	if s.Expired(r.timeProvider.Now()) {
		return nil, sheeterr.NotFoundf("session '%s' not found", id).WithMeta("expired", true)
	}
	return &s, nil
}

// Delete removes a session
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return sheeterr.NotFoundf("session '%s' not found", id)
	}
	return nil
}

// DeleteExpired purges sessions whose expiry has passed
func (r *SQLiteRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		r.timeProvider.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

var _ Repository = (*SQLiteRepository)(nil)
