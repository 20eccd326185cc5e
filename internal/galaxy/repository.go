package galaxy

import (
	"context"
	"sort"

	"planets-galaxymap/internal/geometry"
)

// Repository is one fully materialized snapshot of the game data. It is
// owned by a single run and is never shared across runs.
type Repository struct {
	Planets     []*Planet
	TradeRoutes []*TradeRoute
	Campaigns   []*Campaign
}

func (r *Repository) PlanetByName(name string) *Planet {
	for _, p := range r.Planets {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Repository) PlanetExists(name string) bool {
	return r.PlanetByName(name) != nil
}

// PlanetNames returns all planet names sorted alphabetically.
func (r *Repository) PlanetNames() []string {
	names := make([]string, 0, len(r.Planets))
	for _, p := range r.Planets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

func (r *Repository) CampaignByName(name string) *Campaign {
	for _, c := range r.Campaigns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// RepositoryProvider loads a snapshot of planets, trade routes and campaigns.
// Planet names must be unique within one snapshot.
type RepositoryProvider interface {
	Load(ctx context.Context) (*Repository, error)
}

// CoordinateWriter persists new planet coordinates keyed by planet name.
// Planets whose name is absent from the map are left untouched.
type CoordinateWriter interface {
	WriteCoordinates(ctx context.Context, coords map[string]geometry.Vec2) error
}

// PlanetCreator persists a newly created planet.
type PlanetCreator interface {
	CreatePlanet(ctx context.Context, planet *Planet) error
}
