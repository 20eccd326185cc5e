package planet

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/geometry"
	"planets-galaxymap/internal/migration"
	"planets-galaxymap/internal/shared/database"
	"planets-galaxymap/internal/shared/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations(ctx))

	return NewStore(db, discardLogger())
}

func sampleRepository() *galaxy.Repository {
	kuat := &galaxy.Planet{Name: "Kuat", X: 100.5, Y: -200, ContainingFile: "Planets_Core.xml"}
	corellia := &galaxy.Planet{Name: "Corellia", X: 130, Y: -160, ContainingFile: "Planets_Core.xml"}
	hoth := &galaxy.Planet{Name: "Hoth", X: -900, Y: 900, ContainingFile: "Planets_Outer.xml"}
	ruined := &galaxy.Planet{Name: "Kuat_Ruined", X: 100.5, Y: -200, ContainingFile: "Planets_Core.xml", VariantOf: "Kuat"}

	route := &galaxy.TradeRoute{Name: "Kuat_Corellia", Start: kuat, End: corellia}

	return &galaxy.Repository{
		Planets:     []*galaxy.Planet{kuat, corellia, hoth, ruined},
		TradeRoutes: []*galaxy.TradeRoute{route},
		Campaigns: []*galaxy.Campaign{
			{Name: "Sandbox_Core", Planets: []*galaxy.Planet{corellia, kuat}, TradeRoutes: []*galaxy.TradeRoute{route}},
			{Name: "Sandbox_Outer", Planets: []*galaxy.Planet{hoth}},
		},
	}
}

func names(planets []*galaxy.Planet) []string {
	out := make([]string, 0, len(planets))
	for _, p := range planets {
		out = append(out, p.Name)
	}
	return out
}

func TestStoreImportAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Import(ctx, sampleRepository()))

	repo, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Kuat", "Corellia", "Hoth", "Kuat_Ruined"}, names(repo.Planets))
	assert.Equal(t, "Kuat", repo.PlanetByName("Kuat_Ruined").VariantOf)
	assert.Equal(t, 100.5, repo.PlanetByName("Kuat").X)

	require.Len(t, repo.TradeRoutes, 1)
	assert.Same(t, repo.PlanetByName("Kuat"), repo.TradeRoutes[0].Start)

	core := repo.CampaignByName("Sandbox_Core")
	require.NotNil(t, core)
	assert.Equal(t, []string{"Corellia", "Kuat"}, names(core.Planets))
	assert.Equal(t, []*galaxy.TradeRoute{repo.TradeRoutes[0]}, core.TradeRoutes)
	assert.Equal(t, "Sandbox_Outer", repo.Campaigns[1].Name)
}

func TestStoreImportReplacesPreviousGalaxy(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Import(ctx, sampleRepository()))
	require.NoError(t, store.Import(ctx, &galaxy.Repository{Planets: []*galaxy.Planet{{Name: "Dantooine", ContainingFile: "a.xml"}}}))

	repo, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dantooine"}, names(repo.Planets))
	assert.Empty(t, repo.TradeRoutes)
	assert.Empty(t, repo.Campaigns)
}

func TestStoreImportRejectsDuplicateNames(t *testing.T) {
	store := newStore(t)
	repo := &galaxy.Repository{Planets: []*galaxy.Planet{{Name: "Kuat"}, {Name: "Kuat"}}}

	err := store.Import(context.Background(), repo)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestStoreWriteCoordinates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Import(ctx, sampleRepository()))

	require.NoError(t, store.WriteCoordinates(ctx, map[string]geometry.Vec2{
		"Kuat": {X: 1.25, Y: -2},
		"Hoth": {X: 0, Y: 0},
	}))

	repo, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, geometry.Vec2{X: 1.25, Y: -2}, repo.PlanetByName("Kuat").Position())
	assert.Equal(t, geometry.Vec2{X: 0, Y: 0}, repo.PlanetByName("Hoth").Position())
	assert.Equal(t, geometry.Vec2{X: 130, Y: -160}, repo.PlanetByName("Corellia").Position())
}

func TestStoreWriteCoordinatesIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Import(ctx, sampleRepository()))

	err := store.WriteCoordinates(ctx, map[string]geometry.Vec2{
		"Corellia": {X: 5, Y: 5},
		"Naboo":    {X: 1, Y: 1},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	repo, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, geometry.Vec2{X: 130, Y: -160}, repo.PlanetByName("Corellia").Position())
}

func TestStoreCreatePlanet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Import(ctx, sampleRepository()))

	variant := &galaxy.Planet{Name: "Hoth_Echo_Base", X: -899, Y: 901, ContainingFile: "Planets_Outer.xml", VariantOf: "Hoth"}
	require.NoError(t, store.CreatePlanet(ctx, variant))

	err := store.CreatePlanet(ctx, variant)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	repo, err := store.Load(ctx)
	require.NoError(t, err)
	last := repo.Planets[len(repo.Planets)-1]
	assert.Equal(t, variant, last)
}

func TestStoreRecordMigrationRun(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	result := &migration.Result{
		RunID:       uuid.New(),
		Movement:    "offset",
		Selected:    []string{"Kuat", "Corellia"},
		Coordinates: map[string]geometry.Vec2{"Kuat": {X: 1, Y: 2}, "Corellia": {X: 3, Y: 4}},
	}
	require.NoError(t, store.RecordMigrationRun(ctx, result))

	runs, err := store.MigrationRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID.String(), runs[0].ID)
	assert.Equal(t, 2, runs[0].Selected)
	assert.Equal(t, result.Coordinates, runs[0].Coordinates)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestStoreMigrationRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	var ids []string
	for i := 0; i < 5; i++ {
		result := &migration.Result{
			RunID:       uuid.New(),
			Movement:    "rotation",
			Selected:    []string{"Kuat"},
			Coordinates: map[string]geometry.Vec2{"Kuat": {X: float64(i)}},
		}
		require.NoError(t, store.RecordMigrationRun(ctx, result))
		ids = append(ids, result.RunID.String())
	}

	runs, err := store.MigrationRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[4], ids[3], ids[2]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, geometry.Vec2{X: 4}, runs[0].Coordinates["Kuat"])
}

func TestStoreServesMigrationEngine(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Import(ctx, sampleRepository()))

	cfg, err := migration.Plan{
		Criteria:  []string{"campaigns"},
		Campaigns: []string{"Sandbox_Core"},
		Movement:  migration.MovementSpec{Type: "offset", Offset: []float64{-100, 100}},
		Decimals:  2,
	}.Config()
	require.NoError(t, err)

	_, err = migration.NewEngine(store, store, discardLogger()).Run(ctx, cfg)
	require.NoError(t, err)

	repo, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, geometry.Vec2{X: 0.5, Y: -100}, repo.PlanetByName("Kuat").Position())
	assert.Equal(t, geometry.Vec2{X: -900, Y: 900}, repo.PlanetByName("Hoth").Position())

	runs, err := store.MigrationRuns(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestServiceListPlanets(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Import(ctx, sampleRepository()))
	svc := NewService(store, discardLogger())

	all, err := svc.ListPlanets(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"Sandbox_Core"}, all[0].Campaigns)
	assert.Equal(t, []string{}, all[3].Campaigns)

	outer, err := svc.ListPlanets(ctx, "Sandbox_Outer")
	require.NoError(t, err)
	require.Len(t, outer, 1)
	assert.Equal(t, "Hoth", outer[0].Name)

	_, err = svc.ListPlanets(ctx, "Nope")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}
