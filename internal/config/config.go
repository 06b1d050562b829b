// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

const minSessionSecret = 32

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	S3      S3Config      `envPrefix:"S3_"`
	JWT     JWTConfig     `envPrefix:"JWT_"`
	Google  GoogleConfig  `envPrefix:"GOOGLE_"`
	Session SessionConfig `envPrefix:"SESSION_"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"10485760"`
}

// StorageConfig selects the object store
type StorageConfig struct {
	Backend       string `env:"STORAGE_BACKEND" envDefault:"memory"`
	MaxImageBytes int    `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// S3Config holds bucket settings; Endpoint points at R2 or another S3-compatible store
type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"auto"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

// JWTConfig enables bearer auth when JWKSURL is set
type JWTConfig struct {
	JWKSURL  string `env:"JWKS_URL"`
	Issuer   string `env:"ISSUER"`
	Audience string `env:"AUDIENCE"`
}

// GoogleConfig enables cookie login when ClientID is set
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// SessionConfig holds login session settings
type SessionConfig struct {
	Secret       string        `env:"SECRET"`
	DBPath       string        `env:"DB_PATH" envDefault:"sessions.db"`
	TTL          time.Duration `env:"TTL" envDefault:"720h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
	SweepEvery   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
}

// Load parses and validates configuration from the process environment
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom parses and validates configuration from the given variables only
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that each enabled feature has what it needs
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return sheeterr.InvalidArgument("REDIS_ADDR is required for the redis backend")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return sheeterr.InvalidArgument("S3_BUCKET is required for the s3 backend")
		}
		if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
			return sheeterr.InvalidArgument("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
	default:
		return sheeterr.InvalidArgumentf("STORAGE_BACKEND must be one of memory, redis, s3; got %q", c.Storage.Backend)
	}

	if c.Storage.MaxImageBytes <= 0 {
		return sheeterr.InvalidArgument("MAX_IMAGE_BYTES must be positive")
	}

	if c.LoginEnabled() {
		if c.Google.ClientSecret == "" {
			return sheeterr.InvalidArgument("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
		}
		if c.Google.RedirectURL == "" {
			return sheeterr.InvalidArgument("GOOGLE_REDIRECT_URL is required when GOOGLE_CLIENT_ID is set")
		}
		if len(c.Session.Secret) < minSessionSecret {
			return sheeterr.InvalidArgumentf("SESSION_SECRET must be at least %d bytes when GOOGLE_CLIENT_ID is set", minSessionSecret)
		}
		if c.Session.DBPath == "" {
			return sheeterr.InvalidArgument("SESSION_DB_PATH is required when GOOGLE_CLIENT_ID is set")
		}
	}

	if !c.LoginEnabled() && !c.BearerEnabled() {
		return sheeterr.InvalidArgument("either JWT_JWKS_URL or GOOGLE_CLIENT_ID is required")
	}
	return nil
}

// LoginEnabled reports whether the Google cookie login is configured
func (c *Config) LoginEnabled() bool {
	return c.Google.ClientID != ""
}

// BearerEnabled reports whether bearer JWTs are accepted
func (c *Config) BearerEnabled() bool {
	return c.JWT.JWKSURL != ""
}
