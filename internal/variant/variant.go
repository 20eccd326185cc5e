// Package variant creates new planets as variants of existing ones.
package variant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/shared/errors"
)

// Request describes a variant. Nil coordinates and an empty File are taken
// from the base planet.
type Request struct {
	Name     string   `json:"name"`
	BaseName string   `json:"base"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	File     string   `json:"file,omitempty"`
}

// Create validates req against repo and returns the new planet. repo is not
// modified.
func Create(repo *galaxy.Repository, req Request) (*galaxy.Planet, error) {
	name := strings.TrimSpace(req.Name)
	baseName := strings.TrimSpace(req.BaseName)

	if name == "" {
		return nil, errors.Validation("variant name is required")
	}

	base := repo.PlanetByName(baseName)
	if base == nil {
		return nil, errors.NotFoundf("base planet %q not found", baseName)
	}

	if repo.PlanetExists(name) {
		return nil, errors.Conflictf("planet %q already exists", name)
	}

	planet := &galaxy.Planet{
		Name:           name,
		X:              base.X,
		Y:              base.Y,
		ContainingFile: base.ContainingFile,
		VariantOf:      base.Name,
	}
	if req.X != nil {
		planet.X = *req.X
	}
	if req.Y != nil {
		planet.Y = *req.Y
	}
	if file := strings.TrimSpace(req.File); file != "" {
		planet.ContainingFile = file
	}

	if planet.ContainingFile == "" {
		return nil, errors.Validation("no containing file given for variant")
	}

	return planet, nil
}

type Service struct {
	provider galaxy.RepositoryProvider
	creator  galaxy.PlanetCreator
	logger   *slog.Logger
}

func NewService(provider galaxy.RepositoryProvider, creator galaxy.PlanetCreator, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		creator:  creator,
		logger:   logger,
	}
}

// Create loads a fresh snapshot, validates req against it and persists the
// new planet.
func (s *Service) Create(ctx context.Context, req Request) (*galaxy.Planet, error) {
	logger := s.logger.With(
		"component", "variant_service",
		"operation", "create",
		"name", req.Name,
		"base", req.BaseName,
	)
	logger.Debug("Creating planet variant")

	repo, err := s.provider.Load(ctx)
	if err != nil {
		logger.Error("Failed to load repository", "error", err)
		return nil, fmt.Errorf("failed to load repository: %w", err)
	}

	planet, err := Create(repo, req)
	if err != nil {
		logger.Warn("Variant rejected", "error", err)
		return nil, err
	}

	if err := s.creator.CreatePlanet(ctx, planet); err != nil {
		logger.Error("Failed to persist variant", "error", err)
		return nil, fmt.Errorf("failed to persist variant: %w", err)
	}

	logger.Info("Planet variant created", "file", planet.ContainingFile, "x", planet.X, "y", planet.Y)
	return planet, nil
}
