package planet

import (
	"time"

	"planets-galaxymap/internal/geometry"
)

// Summary is a planet as served by the API, with the campaigns it is part
// of.
type Summary struct {
	Name           string   `json:"name"`
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
	ContainingFile string   `json:"containing_file"`
	VariantOf      string   `json:"variant_of,omitempty"`
	Campaigns      []string `json:"campaigns"`
}

type MigrationRun struct {
	ID          string                   `json:"id"`
	Movement    string                   `json:"movement"`
	Selected    int                      `json:"selected"`
	Coordinates map[string]geometry.Vec2 `json:"coordinates"`
	CreatedAt   time.Time                `json:"created_at"`
}
