package galaxy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"planets-galaxymap/internal/geometry"
)

func TestRepositoryLookups(t *testing.T) {
	kuat := &Planet{Name: "Kuat", X: 1, Y: 2}
	bespin := &Planet{Name: "Bespin"}
	repo := &Repository{
		Planets:   []*Planet{kuat, bespin},
		Campaigns: []*Campaign{{Name: "Rebellion", Planets: []*Planet{kuat}}},
	}

	assert.Same(t, kuat, repo.PlanetByName("Kuat"))
	assert.Nil(t, repo.PlanetByName("Hoth"))
	assert.True(t, repo.PlanetExists("Bespin"))
	assert.Equal(t, []string{"Bespin", "Kuat"}, repo.PlanetNames())

	c := repo.CampaignByName("Rebellion")
	if assert.NotNil(t, c) {
		assert.True(t, c.HasPlanet(kuat))
		assert.False(t, c.HasPlanet(bespin))
	}
	assert.Nil(t, repo.CampaignByName("Unknown"))
}

func TestTradeRouteOther(t *testing.T) {
	a, b, c := &Planet{Name: "A"}, &Planet{Name: "B"}, &Planet{Name: "C"}
	tr := &TradeRoute{Name: "A_B", Start: a, End: b}

	assert.Same(t, b, tr.Other(a))
	assert.Same(t, a, tr.Other(b))
	assert.Nil(t, tr.Other(c))
}

func TestPlanetPosition(t *testing.T) {
	p := &Planet{Name: "A", X: 3, Y: 4}
	assert.Equal(t, geometry.Vec2{X: 3, Y: 4}, p.Position())

	p.SetPosition(geometry.Vec2{X: -1, Y: 0.5})
	assert.Equal(t, -1.0, p.X)
	assert.Equal(t, 0.5, p.Y)
}
