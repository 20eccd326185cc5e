package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"planets-galaxymap/internal/galaxy"
)

func line() (a, b, c *galaxy.Planet, all []*galaxy.Planet) {
	a = &galaxy.Planet{Name: "A", X: 0, Y: 0}
	b = &galaxy.Planet{Name: "B", X: 50, Y: 0}
	c = &galaxy.Planet{Name: "C", X: 200, Y: 0}
	return a, b, c, []*galaxy.Planet{a, b, c}
}

func TestImplicitConnectionsOnly(t *testing.T) {
	a, b, c, all := line()
	r := NewResolver(Config{AutoConnectionDistance: 100})

	assert.Equal(t, []string{"B"}, r.Neighbors(a, all, nil))
	assert.Equal(t, []string{"A"}, r.Neighbors(b, all, nil))
	assert.Empty(t, r.Neighbors(c, all, nil))
}

func TestTradeRouteAddsExplicitConnection(t *testing.T) {
	a, _, c, all := line()
	routes := []*galaxy.TradeRoute{{Name: "A_C", Start: a, End: c}}
	r := NewResolver(Config{AutoConnectionDistance: 100})

	assert.ElementsMatch(t, []string{"B", "C"}, r.Neighbors(a, all, routes))
	assert.Equal(t, []string{"C", "B"}, r.Neighbors(a, all, routes), "routes come first")
	assert.Equal(t, []string{"A"}, r.Neighbors(c, all, routes))
}

func TestThresholdIsStrict(t *testing.T) {
	a := &galaxy.Planet{Name: "A", X: 0, Y: 0}
	b := &galaxy.Planet{Name: "B", X: 60, Y: 80}
	all := []*galaxy.Planet{a, b}

	r := NewResolver(Config{AutoConnectionDistance: 100})
	assert.Equal(t, 100.0, Distance(a, b))
	assert.Empty(t, r.Neighbors(a, all, nil))
	assert.Empty(t, r.Neighbors(b, all, nil))

	r = NewResolver(Config{AutoConnectionDistance: 100.01})
	assert.Equal(t, []string{"B"}, r.Neighbors(a, all, nil))
}

func TestNoDuplicatesOrSelfConnections(t *testing.T) {
	a, b, _, all := line()
	routes := []*galaxy.TradeRoute{
		{Name: "A_B", Start: a, End: b},
		{Name: "B_A", Start: b, End: a},
		{Name: "A_A", Start: a, End: a},
	}
	r := NewResolver(Config{AutoConnectionDistance: 100})

	assert.Equal(t, []string{"B"}, r.Neighbors(a, all, routes))
}

func TestIgnoredPlanetsAreNeitherSourceNorTarget(t *testing.T) {
	a, b, _, all := line()
	core := &galaxy.Planet{Name: "Galaxy_Core_Art_Model", X: 10, Y: 0}
	all = append(all, core)
	routes := []*galaxy.TradeRoute{{Name: "Core_B", Start: core, End: b}}

	r := NewResolver(DefaultConfig())

	assert.Nil(t, r.Neighbors(core, all, routes))
	assert.Equal(t, []string{"B"}, r.Neighbors(a, all, routes))
	assert.Equal(t, []string{"A"}, r.Neighbors(b, all, routes))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100.0, cfg.AutoConnectionDistance)
	assert.Equal(t, []string{"Galaxy_Core_Art_Model"}, cfg.Ignore)

	cfg.Ignore[0] = "changed"
	assert.Equal(t, "Galaxy_Core_Art_Model", DefaultIgnore[0])
}
