package services

import (
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/objects"
	"github.com/KirkDiggler/aionia-sheet/internal/services/characters"
	"github.com/KirkDiggler/aionia-sheet/internal/uuid"
)

// Provider holds all service instances
type Provider struct {
	CharacterService characters.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	ObjectRepository objects.Repository
	UUIDGenerator    uuid.Generator
	MaxImageBytes    int
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	if cfg == nil {
		cfg = &ProviderConfig{}
	}

	// Use in-memory repository if none provided
	objectRepo := cfg.ObjectRepository
	if objectRepo == nil {
		objectRepo = objects.NewInMemoryRepository()
	}

	charService := characters.NewService(&characters.ServiceConfig{
		Repository:    objectRepo,
		UUIDGenerator: cfg.UUIDGenerator,
		MaxImageBytes: cfg.MaxImageBytes,
	})

	return &Provider{
		CharacterService: charService,
	}
}
