package geometry

import (
	"math"
)

// DefaultDecimals is the rounding precision applied after every position write.
const DefaultDecimals = 2

type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

// Round rounds both components to the given number of decimals, ties to even.
func (v Vec2) Round(decimals int) Vec2 {
	return Vec2{X: round(v.X, decimals), Y: round(v.Y, decimals)}
}

func round(value float64, decimals int) float64 {
	if decimals < 0 {
		return value
	}
	p := math.Pow(10, float64(decimals))
	r := math.RoundToEven(value*p) / p
	if r == 0 {
		// avoid writing "-0" back to data files
		return 0
	}
	return r
}

// Positioned is anything with a mutable 2D position.
type Positioned interface {
	Position() Vec2
	SetPosition(Vec2)
}

// LinearOp maps a position expressed in a local frame to a new position in
// the same frame.
type LinearOp func(Vec2) Vec2

// Translate shifts every position by delta.
func Translate[P Positioned](items []P, delta Vec2, decimals int) {
	for _, item := range items {
		item.SetPosition(item.Position().Add(delta).Round(decimals))
	}
}

// ScaleFromOrigin multiplies every position's offset from origin by factor.
func ScaleFromOrigin[P Positioned](items []P, factor float64, origin Vec2, decimals int) {
	inLocalFrame(items, origin, decimals, func(v Vec2) Vec2 {
		return v.Scale(factor)
	})
}

// RotateAroundPivot rotates every position counter-clockwise by degrees
// around pivot.
func RotateAroundPivot[P Positioned](items []P, degrees float64, pivot Vec2, decimals int) {
	inLocalFrame(items, pivot, decimals, RotationOp(degrees))
}

// RotationOp returns the standard 2D counter-clockwise rotation by degrees.
func RotationOp(degrees float64) LinearOp {
	s, c := math.Sincos(degrees * math.Pi / 180)
	return func(v Vec2) Vec2 {
		return Vec2{
			X: c*v.X - s*v.Y,
			Y: s*v.X + c*v.Y,
		}
	}
}

// inLocalFrame re-expresses positions relative to origin, applies op, and
// shifts the results back to absolute coordinates. Rounding happens at each
// of the three writes, matching the data files' fixed precision.
func inLocalFrame[P Positioned](items []P, origin Vec2, decimals int, op LinearOp) {
	Translate(items, origin.Neg(), decimals)
	for _, item := range items {
		item.SetPosition(op(item.Position()).Round(decimals))
	}
	Translate(items, origin, decimals)
}

// Distance is the plain Euclidean distance between two points.
func Distance(a, b Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
