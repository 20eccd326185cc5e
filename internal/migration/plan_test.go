package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/geometry"
	"planets-galaxymap/internal/selection"
	"planets-galaxymap/internal/shared/errors"
)

const tomlPlan = `
criteria  = ["campaigns", "quadrants"]
campaigns = ["Tauri"]

[[quadrants]]
x = [300, 10000]
y = [-10000, -500]

[movement]
type  = "rotation"
angle = 40
pivot = [-400, 0]
`

const yamlPlan = `
files: [goauld.xml]
formula: files_or_quadrant
movement:
  type: offset
  offset: [25, -5]
decimals: 1
`

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPlanTOML(t *testing.T) {
	path := writePlan(t, "plan.toml", tomlPlan)

	plan, err := LoadPlan(path, DefaultPlan([]string{"Galaxy_Core_Art_Model"}, 2))
	require.NoError(t, err)

	assert.Equal(t, []string{"campaigns", "quadrants"}, plan.Criteria)
	assert.Equal(t, 2, plan.Decimals)
	assert.Equal(t, []string{"Galaxy_Core_Art_Model"}, plan.Ignore)

	cfg, err := plan.Config()
	require.NoError(t, err)

	assert.Equal(t, []selection.Kind{selection.KindCampaigns, selection.KindQuadrants}, cfg.Selection.Kinds)
	assert.Len(t, cfg.Selection.Area, 1)
	assert.Nil(t, cfg.Selection.Custom)
	assert.Equal(t, geometry.Movement{
		Kind:  geometry.MovementRotation,
		Angle: 40,
		Pivot: geometry.Vec2{X: -400, Y: 0},
	}, cfg.Movement)
}

func TestLoadPlanYAML(t *testing.T) {
	path := writePlan(t, "plan.yml", yamlPlan)

	plan, err := LoadPlan(path, DefaultPlan(nil, 2))
	require.NoError(t, err)

	cfg, err := plan.Config()
	require.NoError(t, err)

	assert.Empty(t, cfg.Selection.Kinds)
	assert.Equal(t, 1, cfg.Decimals)
	assert.Equal(t, geometry.Vec2{X: 25, Y: -5}, cfg.Movement.Vector)
	require.NotNil(t, cfg.Selection.Formula)
	assert.True(t, cfg.Selection.Formula(false, true, false, false))
	assert.False(t, cfg.Selection.Formula(true, false, false, false))
}

func TestDecodeJSON(t *testing.T) {
	plan, err := DecodeJSON(strings.NewReader(`{"criteria":["all"],"movement":{"type":"stretch","factor":1.5}}`), DefaultPlan(nil, 2))
	require.NoError(t, err)

	cfg, err := plan.Config()
	require.NoError(t, err)
	assert.Equal(t, geometry.MovementStretch, cfg.Movement.Kind)
	assert.Equal(t, 1.5, cfg.Movement.Factor)
}

func TestLoadPlanRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown toml key", "plan.toml", "colour = 'red'\n[movement]\ntype = 'offset'\noffset = [1, 1]\n"},
		{"toml without movement type", "plan.toml", "criteria = ['all']\n"},
		{"unknown yaml key", "plan.yaml", "movement:\n  type: offset\n  colour: red\n"},
		{"unknown json key", "plan.json", `{"colour":"red"}`},
		{"unsupported extension", "plan.ini", "criteria=all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlan(writePlan(t, tt.file, tt.content), DefaultPlan(nil, 2))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		})
	}
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "absent.toml"), DefaultPlan(nil, 2))
	require.Error(t, err)
}

func TestPlanConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
	}{
		{"unknown criterion", Plan{Criteria: []string{"moons"}, Movement: MovementSpec{Type: "offset", Offset: []float64{1, 1}}}},
		{"unknown formula", Plan{Formula: "xor", Movement: MovementSpec{Type: "offset", Offset: []float64{1, 1}}}},
		{"bad quadrant", Plan{Quadrants: []QuadrantSpec{{X: []float64{1}, Y: []float64{1, 2}}}, Movement: MovementSpec{Type: "offset", Offset: []float64{1, 1}}}},
		{"unknown movement", Plan{Movement: MovementSpec{Type: "teleport"}}},
		{"offset needs two components", Plan{Movement: MovementSpec{Type: "offset", Offset: []float64{1}}}},
		{"stretch needs factor", Plan{Movement: MovementSpec{Type: "stretch"}}},
		{"pivot needs two components", Plan{Movement: MovementSpec{Type: "rotation", Angle: 10, Pivot: []float64{1, 2, 3}}}},
		{"negative decimals", Plan{Decimals: -1, Movement: MovementSpec{Type: "rotation"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.plan.Config()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		})
	}
}

func TestPlanCustomVariantOf(t *testing.T) {
	plan := Plan{
		Criteria:        []string{"custom"},
		CustomVariantOf: []string{"Coruscant"},
		Movement:        MovementSpec{Type: "offset", Offset: []float64{0, 0}},
	}
	cfg, err := plan.Config()
	require.NoError(t, err)
	require.NotNil(t, cfg.Selection.Custom)

	repo := &galaxy.Repository{}
	assert.True(t, cfg.Selection.Custom(&galaxy.Planet{Name: "Coruscant_Ruined", VariantOf: "Coruscant"}, repo))
	assert.False(t, cfg.Selection.Custom(&galaxy.Planet{Name: "Coruscant"}, repo))
}

func TestPlanAnyFormulaUsesCustomVariantOf(t *testing.T) {
	path := writePlan(t, "plan.toml", `
formula = "any"
custom_variant_of = ["Coruscant"]

[movement]
type = "offset"
offset = [1, 1]
`)

	plan, err := LoadPlan(path, DefaultPlan(nil, 2))
	require.NoError(t, err)
	cfg, err := plan.Config()
	require.NoError(t, err)
	assert.Empty(t, cfg.Selection.Kinds)

	coruscant := &galaxy.Planet{Name: "Coruscant"}
	ruined := &galaxy.Planet{Name: "Coruscant_Ruined", VariantOf: "Coruscant"}
	repo := &galaxy.Repository{Planets: []*galaxy.Planet{coruscant, ruined}}

	migrating := SelectMigrating(repo, cfg.Selection, cfg.Ignore)
	require.Len(t, migrating, 1)
	assert.Equal(t, "Coruscant_Ruined", migrating[0].Name)
}
