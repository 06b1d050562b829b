// Package uuid wraps id generation so callers can swap in a deterministic generator
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mock/mock_generator.go -package=mockuuid -source=uuid.go

// Generator produces unique ids
type Generator interface {
	New() string
}

// GoogleUUIDGenerator generates random (v4) UUIDs
type GoogleUUIDGenerator struct{}

// New generates a new UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// Short returns the first n characters of a fresh id with the dashes removed
func Short(g Generator, n int) string {
	id := strings.ReplaceAll(g.New(), "-", "")
	if n > 0 && n < len(id) {
		return id[:n]
	}
	return id
}
