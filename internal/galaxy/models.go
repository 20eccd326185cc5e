package galaxy

import (
	"planets-galaxymap/internal/geometry"
)

type Planet struct {
	Name           string  `json:"name"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	ContainingFile string  `json:"containing_file"`
	VariantOf      string  `json:"variant_of,omitempty"`
}

func (p *Planet) Position() geometry.Vec2 {
	return geometry.Vec2{X: p.X, Y: p.Y}
}

func (p *Planet) SetPosition(v geometry.Vec2) {
	p.X, p.Y = v.X, v.Y
}

// TradeRoute is an undirected edge between two planets of the same snapshot.
type TradeRoute struct {
	Name  string  `json:"name"`
	Start *Planet `json:"-"`
	End   *Planet `json:"-"`
}

// Other returns the endpoint opposite to p, or nil when p is not an endpoint.
func (tr *TradeRoute) Other(p *Planet) *Planet {
	switch {
	case tr.Start == p:
		return tr.End
	case tr.End == p:
		return tr.Start
	default:
		return nil
	}
}

type Campaign struct {
	Name        string        `json:"name"`
	Planets     []*Planet     `json:"-"`
	TradeRoutes []*TradeRoute `json:"-"`
}

func (c *Campaign) HasPlanet(p *Planet) bool {
	for _, cp := range c.Planets {
		if cp == p {
			return true
		}
	}
	return false
}
