package planet

import (
	"context"
	"fmt"
	"log/slog"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/shared/errors"
)

// Service answers read queries about planets from any repository provider.
type Service struct {
	provider galaxy.RepositoryProvider
	logger   *slog.Logger
}

func NewService(provider galaxy.RepositoryProvider, logger *slog.Logger) *Service {
	logger.Debug("Initializing planet service")

	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// ListPlanets returns the planets in repository order, limited to one
// campaign when campaign is not empty.
func (s *Service) ListPlanets(ctx context.Context, campaign string) ([]Summary, error) {
	logger := s.logger.With("component", "planet_service", "operation", "list_planets", "campaign", campaign)
	logger.Debug("Listing planets")

	repo, err := s.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load repository: %w", err)
	}

	planets := repo.Planets
	if campaign != "" {
		c := repo.CampaignByName(campaign)
		if c == nil {
			return nil, errors.NotFoundf("campaign %q not found", campaign)
		}
		planets = c.Planets
	}

	membership := make(map[*galaxy.Planet][]string, len(repo.Planets))
	for _, c := range repo.Campaigns {
		for _, p := range c.Planets {
			membership[p] = append(membership[p], c.Name)
		}
	}

	summaries := make([]Summary, 0, len(planets))
	for _, p := range planets {
		campaigns := membership[p]
		if campaigns == nil {
			campaigns = []string{}
		}
		summaries = append(summaries, Summary{
			Name:           p.Name,
			X:              p.X,
			Y:              p.Y,
			ContainingFile: p.ContainingFile,
			VariantOf:      p.VariantOf,
			Campaigns:      campaigns,
		})
	}

	logger.Debug("Planets listed", "count", len(summaries))
	return summaries, nil
}
