// Package connectivity derives the neighbor list of each planet from
// explicit trade routes and an implicit proximity rule.
package connectivity

import (
	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/geometry"
	"planets-galaxymap/internal/shared/orderedset"
)

const DefaultAutoConnectionDistance = 100

// DefaultIgnore lists the pseudo planets shipped with the base game.
var DefaultIgnore = []string{"Galaxy_Core_Art_Model"}

type Config struct {
	// AutoConnectionDistance is the maximum fleet movement distance. Planets
	// strictly closer than this are connected even without a trade route.
	AutoConnectionDistance float64
	// Ignore names placeholder planets that are neither sources nor targets.
	Ignore []string
}

func DefaultConfig() Config {
	return Config{
		AutoConnectionDistance: DefaultAutoConnectionDistance,
		Ignore:                 append([]string(nil), DefaultIgnore...),
	}
}

type Resolver struct {
	threshold float64
	ignore    map[string]struct{}
}

func NewResolver(cfg Config) *Resolver {
	ignore := make(map[string]struct{}, len(cfg.Ignore))
	for _, name := range cfg.Ignore {
		ignore[name] = struct{}{}
	}
	return &Resolver{
		threshold: cfg.AutoConnectionDistance,
		ignore:    ignore,
	}
}

func (r *Resolver) Ignored(p *galaxy.Planet) bool {
	_, ok := r.ignore[p.Name]
	return ok
}

// Neighbors returns the duplicate-free names of the planets connected to
// planet: trade route partners first, in route order, then every other
// planet of population closer than the auto connection distance.
//
// The implicit pass is linear in len(population), so resolving a whole
// galaxy is quadratic. That is fine for the few hundred planets of a
// campaign map.
func (r *Resolver) Neighbors(planet *galaxy.Planet, population []*galaxy.Planet, routes []*galaxy.TradeRoute) []string {
	if r.Ignored(planet) {
		return nil
	}

	connections := orderedset.New[string]()

	for _, tr := range routes {
		other := tr.Other(planet)
		if other == nil || other.Name == planet.Name || r.Ignored(other) {
			continue
		}
		connections.Add(other.Name)
	}

	for _, candidate := range population {
		if candidate.Name == planet.Name || r.Ignored(candidate) || connections.Contains(candidate.Name) {
			continue
		}
		if Distance(planet, candidate) < r.threshold {
			connections.Add(candidate.Name)
		}
	}

	return connections.Items()
}

func Distance(a, b *galaxy.Planet) float64 {
	return geometry.Distance(a.Position(), b.Position())
}
