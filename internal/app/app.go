// Package app wires configuration into a ready-to-serve API handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	"github.com/KirkDiggler/aionia-sheet/internal/config"
	"github.com/KirkDiggler/aionia-sheet/internal/handlers/api"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/objects"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/sessions"
	"github.com/KirkDiggler/aionia-sheet/internal/services"
)

const redisPingTimeout = 5 * time.Second

// App holds the handler and everything that must be closed with it
type App struct {
	Handler  *api.Handler
	Sessions sessions.Repository // nil when login is disabled

	closers []func() error
}

// New builds the object store, auth and API handler described by cfg.
// ctx bounds background work such as JWKS refresh.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	a := &App{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	objectRepo, err := a.objectRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	handlerCfg := &api.HandlerConfig{
		ServiceProvider: services.NewProvider(&services.ProviderConfig{
			ObjectRepository: objectRepo,
			MaxImageBytes:    cfg.Storage.MaxImageBytes,
		}),
		CookieSecure: cfg.Session.CookieSecure,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	if cfg.BearerEnabled() {
		verifier, err := auth.NewVerifier(ctx, &auth.VerifierConfig{
			JWKSURL:  cfg.JWT.JWKSURL,
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		})
		if err != nil {
			return nil, err
		}
		handlerCfg.Verifier = verifier
		log.Printf("App: accepting bearer tokens from %s", cfg.JWT.JWKSURL)
	}

	if cfg.LoginEnabled() {
		tokens, err := auth.NewTokens(&auth.TokensConfig{Secret: []byte(cfg.Session.Secret)})
		if err != nil {
			return nil, err
		}
		provider, err := auth.NewGoogleProvider(&auth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		if err != nil {
			return nil, err
		}
		sessionRepo, err := sessions.OpenSQLite(ctx, &sessions.SQLiteConfig{
			Path: cfg.Session.DBPath,
			TTL:  cfg.Session.TTL,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sessionRepo.Close)
		a.Sessions = sessionRepo

		handlerCfg.Tokens = tokens
		handlerCfg.OAuth = provider
		handlerCfg.Sessions = sessionRepo
		log.Printf("App: Google login enabled, sessions in %s", cfg.Session.DBPath)
	}

	a.Handler = api.NewHandler(handlerCfg)
	ok = true
	return a, nil
}

func (a *App) objectRepository(ctx context.Context, cfg *config.Config) (objects.Repository, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Printf("App: storing objects in Redis at %s", cfg.Redis.Addr)
		return objects.NewRedis(client), nil

	case config.BackendS3:
		repo, err := objects.NewS3(ctx, objects.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("App: storing objects in bucket %s", cfg.S3.Bucket)
		return repo, nil

	default:
		log.Println("App: storing objects in memory")
		return objects.NewInMemoryRepository(), nil
	}
}

// Routes returns the API routes
func (a *App) Routes() http.Handler {
	return a.Handler.Routes()
}

// SweepSessions deletes expired sessions every interval until ctx is done
func (a *App) SweepSessions(ctx context.Context, every time.Duration) {
	if a.Sessions == nil || every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Sessions.DeleteExpired(ctx)
			if err != nil {
				log.Printf("App: failed to delete expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("App: deleted %d expired sessions", n)
			}
		}
	}
}

// Close releases connections in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
