package spatial

import (
	"fmt"
	"log/slog"

	"planets-galaxymap/internal/shared/errors"
)

// Quadrant is an axis-aligned open rectangle. Points on the boundary are
// not contained.
type Quadrant struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// NewQuadrant builds a quadrant from two [min, max] ranges. Each range must
// have exactly two bounds. Ranges given in descending order are accepted
// with a warning and keep their inverted semantics, which means such a
// quadrant contains nothing.
func NewQuadrant(xRange, yRange []float64) (Quadrant, error) {
	if len(xRange) != 2 || len(yRange) != 2 {
		return Quadrant{}, errors.Validationf(
			"quadrant ranges need exactly two bounds each, got x=%d y=%d", len(xRange), len(yRange))
	}

	q := Quadrant{
		MinX: xRange[0],
		MaxX: xRange[1],
		MinY: yRange[0],
		MaxY: yRange[1],
	}

	if q.MinX > q.MaxX || q.MinY > q.MaxY {
		slog.With("component", "spatial", "operation", "new_quadrant").Warn(
			"Quadrant got at least one range in unexpected order",
			"x_range", fmt.Sprintf("[%g, %g]", q.MinX, q.MaxX),
			"y_range", fmt.Sprintf("[%g, %g]", q.MinY, q.MaxY),
		)
	}

	return q, nil
}

func (q Quadrant) Contains(x, y float64) bool {
	return x > q.MinX && x < q.MaxX && y > q.MinY && y < q.MaxY
}

// QuadrantSuperposition contains a point when any member quadrant does.
type QuadrantSuperposition []Quadrant

func (s QuadrantSuperposition) Contains(x, y float64) bool {
	for _, q := range s {
		if q.Contains(x, y) {
			return true
		}
	}
	return false
}
