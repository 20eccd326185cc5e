package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/geometry"
	"planets-galaxymap/internal/selection"
	"planets-galaxymap/internal/shared/errors"
	"planets-galaxymap/internal/spatial"
)

// Plan is the file form of a migration. Example (TOML):
//
//	criteria  = ["campaigns"]
//	campaigns = ["Sandbox_Large_Stargate_Universe_Tauri"]
//
//	[[quadrants]]
//	x = [300, 10000]
//	y = [-10000, -500]
//
//	[movement]
//	type  = "rotation"
//	angle = 40
//	pivot = [-400, 0]
type Plan struct {
	Criteria        []string       `toml:"criteria" yaml:"criteria" json:"criteria"`
	Campaigns       []string       `toml:"campaigns" yaml:"campaigns" json:"campaigns"`
	Files           []string       `toml:"files" yaml:"files" json:"files"`
	Quadrants       []QuadrantSpec `toml:"quadrants" yaml:"quadrants" json:"quadrants"`
	// Formula is read only when Criteria is empty: default,
	// campaigns_and_files, campaigns_or_quadrant, files_or_quadrant, any or all.
	Formula         string         `toml:"formula" yaml:"formula" json:"formula"`
	CustomVariantOf []string       `toml:"custom_variant_of" yaml:"custom_variant_of" json:"custom_variant_of"`
	Movement        MovementSpec   `toml:"movement" yaml:"movement" json:"movement"`
	Decimals        int            `toml:"decimals" yaml:"decimals" json:"decimals"`
	Ignore          []string       `toml:"ignore" yaml:"ignore" json:"ignore"`
}

type QuadrantSpec struct {
	X []float64 `toml:"x" yaml:"x" json:"x"`
	Y []float64 `toml:"y" yaml:"y" json:"y"`
}

type MovementSpec struct {
	Type   string    `toml:"type" yaml:"type" json:"type"`
	Offset []float64 `toml:"offset" yaml:"offset" json:"offset"`
	Factor float64   `toml:"factor" yaml:"factor" json:"factor"`
	Angle  float64   `toml:"angle" yaml:"angle" json:"angle"`
	Pivot  []float64 `toml:"pivot" yaml:"pivot" json:"pivot"`
}

// DefaultPlan carries the values used for keys a plan file leaves out.
func DefaultPlan(ignore []string, decimals int) Plan {
	return Plan{
		Decimals: decimals,
		Ignore:   append([]string(nil), ignore...),
	}
}

// LoadPlan reads a TOML, YAML or JSON plan, chosen by file extension, on
// top of defaults.
func LoadPlan(path string, defaults Plan) (Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plan{}, errors.WrapValidation(fmt.Sprintf("failed to open migration plan %s", path), err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return DecodeTOML(f, defaults)
	case ".yaml", ".yml":
		return DecodeYAML(f, defaults)
	case ".json":
		return DecodeJSON(f, defaults)
	default:
		return Plan{}, errors.Validationf("unsupported migration plan format %q", ext)
	}
}

func DecodeTOML(r io.Reader, defaults Plan) (Plan, error) {
	plan := defaults
	meta, err := toml.NewDecoder(r).Decode(&plan)
	if err != nil {
		return Plan{}, errors.WrapValidation("failed to parse TOML migration plan", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Plan{}, errors.Validationf("unknown keys in migration plan: %v", undecoded)
	}
	if !meta.IsDefined("movement", "type") {
		return Plan{}, errors.Validation("migration plan needs movement.type")
	}
	return plan, nil
}

func DecodeYAML(r io.Reader, defaults Plan) (Plan, error) {
	plan := defaults
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return Plan{}, errors.WrapValidation("failed to parse YAML migration plan", err)
	}
	return plan, nil
}

func DecodeJSON(r io.Reader, defaults Plan) (Plan, error) {
	plan := defaults
	data, err := io.ReadAll(r)
	if err != nil {
		return Plan{}, errors.WrapValidation("failed to read JSON migration plan", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		return Plan{}, errors.WrapValidation("failed to parse JSON migration plan", err)
	}
	return plan, nil
}

// Config validates the plan and turns it into an engine configuration.
func (p Plan) Config() (Config, error) {
	kinds, err := selection.ParseKinds(p.Criteria)
	if err != nil {
		return Config{}, errors.WrapValidation("invalid selection criteria", err)
	}

	formula, err := selection.ParseFormula(p.Formula)
	if err != nil {
		return Config{}, errors.WrapValidation("invalid selection formula", err)
	}

	area := make(spatial.QuadrantSuperposition, 0, len(p.Quadrants))
	for _, spec := range p.Quadrants {
		q, err := spatial.NewQuadrant(spec.X, spec.Y)
		if err != nil {
			return Config{}, err
		}
		area = append(area, q)
	}

	movement, err := p.Movement.movement()
	if err != nil {
		return Config{}, err
	}

	if p.Decimals < 0 {
		return Config{}, errors.Validation("decimals must not be negative")
	}

	return Config{
		Selection: selection.Criteria{
			Kinds:     kinds,
			Campaigns: p.Campaigns,
			Files:     p.Files,
			Area:      area,
			Custom:    variantOf(p.CustomVariantOf),
			Formula:   formula,
		},
		Movement: movement,
		Ignore:   p.Ignore,
		Decimals: p.Decimals,
	}, nil
}

// variantOf is the custom criterion available to plan files: it accepts
// planets that are variants of one of the named base planets.
func variantOf(bases []string) selection.CustomFunc {
	if len(bases) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(bases))
	for _, b := range bases {
		set[b] = struct{}{}
	}
	return func(p *galaxy.Planet, _ *galaxy.Repository) bool {
		_, ok := set[p.VariantOf]
		return ok
	}
}

func (m MovementSpec) movement() (geometry.Movement, error) {
	kind, err := geometry.ParseMovementKind(m.Type)
	if err != nil {
		return geometry.Movement{}, errors.WrapValidation("invalid movement", err)
	}

	pivot, err := vec("movement.pivot", m.Pivot, true)
	if err != nil {
		return geometry.Movement{}, err
	}

	out := geometry.Movement{Kind: kind, Pivot: pivot, Factor: m.Factor, Angle: m.Angle}

	switch kind {
	case geometry.MovementOffset:
		out.Vector, err = vec("movement.offset", m.Offset, false)
		if err != nil {
			return geometry.Movement{}, err
		}
	case geometry.MovementStretch:
		if m.Factor == 0 {
			return geometry.Movement{}, errors.Validation("movement.factor is required for stretch")
		}
	case geometry.MovementRotation:
	}

	return out, nil
}

func vec(key string, values []float64, optional bool) (geometry.Vec2, error) {
	if len(values) == 0 && optional {
		return geometry.Vec2{}, nil
	}
	if len(values) != 2 {
		return geometry.Vec2{}, errors.Validationf("%s needs exactly two components, got %d", key, len(values))
	}
	return geometry.Vec2{X: values[0], Y: values[1]}, nil
}
