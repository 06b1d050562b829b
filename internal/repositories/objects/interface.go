// Package objects stores opaque blobs under slash separated keys.
// Character payloads and images share one store; the first key segment is the owner.
package objects

//go:generate mockgen -destination=mock/mock.go -package=mockobjects -source=interface.go

import (
	"context"
	"strings"
	"time"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

// Object is a stored blob
type Object struct {
	Key         string
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

// Info describes a stored blob without its payload
type Info struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// Repository defines the interface for object persistence
type Repository interface {
	// Put creates or replaces the object at obj.Key
	Put(ctx context.Context, obj *Object) error

	// Get retrieves an object by key
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes an object
	Delete(ctx context.Context, key string) error

	// List returns every object whose key starts with prefix, sorted by key
	List(ctx context.Context, prefix string) ([]*Info, error)
}

// TimeProvider stamps UpdatedAt
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now().UTC() }

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return sheeterr.InvalidArgument("object key is required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return sheeterr.InvalidArgumentf("invalid object key %q", key)
	}
	return nil
}

func validateObject(obj *Object) error {
	if obj == nil {
		return sheeterr.InvalidArgument("object cannot be nil")
	}
	return validateKey(obj.Key)
}

func isNotFound(err error) bool {
	return sheeterr.IsNotFound(err)
}

func notFound(key string) error {
	return sheeterr.NotFoundf("object '%s' not found", key).WithMeta("key", key)
}
