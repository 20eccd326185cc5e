package geometry

import (
	"fmt"
	"strings"
)

// MovementKind selects which transform a migration applies.
type MovementKind int

const (
	MovementOffset MovementKind = iota
	MovementStretch
	MovementRotation
)

func (k MovementKind) String() string {
	switch k {
	case MovementOffset:
		return "offset"
	case MovementStretch:
		return "stretch"
	case MovementRotation:
		return "rotation"
	default:
		return fmt.Sprintf("movement(%d)", int(k))
	}
}

// ParseMovementKind maps the configuration names offset, stretch and rotation.
func ParseMovementKind(raw string) (MovementKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "offset":
		return MovementOffset, nil
	case "stretch":
		return MovementStretch, nil
	case "rotation":
		return MovementRotation, nil
	default:
		return 0, fmt.Errorf("unknown movement type %q (expected offset, stretch or rotation)", raw)
	}
}

// Movement describes one transform together with its parameters. Only the
// fields used by Kind are read.
type Movement struct {
	Kind   MovementKind
	Vector Vec2
	Factor float64
	Angle  float64
	Pivot  Vec2
}

// Move applies m to items in place.
func Move[P Positioned](m Movement, items []P, decimals int) error {
	switch m.Kind {
	case MovementOffset:
		Translate(items, m.Vector, decimals)
	case MovementStretch:
		ScaleFromOrigin(items, m.Factor, m.Pivot, decimals)
	case MovementRotation:
		RotateAroundPivot(items, m.Angle, m.Pivot, decimals)
	default:
		return fmt.Errorf("unsupported movement kind %s", m.Kind)
	}
	return nil
}
