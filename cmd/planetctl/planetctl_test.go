package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planets-galaxymap/internal/auth"
	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/gamedata"
	"planets-galaxymap/internal/planet"
	"planets-galaxymap/internal/shared/database"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const gameObjectFiles = `<?xml version="1.0" ?>
<Game_Object_Files>
	<File>Planets.xml</File>
</Game_Object_Files>
`

const planetsXML = `<?xml version="1.0" ?>
<Planets>
	<Planet Name="Kuat">
		<Galactic_Position>0, 0, 0</Galactic_Position>
	</Planet>
	<Planet Name="Corellia">
		<Galactic_Position>30, 40, 0</Galactic_Position>
	</Planet>
	<Planet Name="Hoth">
		<Galactic_Position>-900, 900, 0</Galactic_Position>
	</Planet>
</Planets>
`

const offsetPlan = `criteria = ["all"]

[movement]
type = "offset"
offset = [10, 10]
`

func setupEnv(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "XML")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "GameObjectFiles.XML"), []byte(gameObjectFiles), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Planets.xml"), []byte(planetsXML), 0o644))

	t.Setenv("STORE", "xml")
	t.Setenv("DATA_PATH", root)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SQLITE_PATH", filepath.Join(root, "galaxymap.db"))
	t.Setenv("REDIS_ENABLED", "false")

	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func loadXML(t *testing.T, root string) *galaxy.Repository {
	t.Helper()
	repo, err := gamedata.NewLoader(root, slog.New(slog.NewTextHandler(io.Discard, nil))).Load(context.Background())
	require.NoError(t, err)
	return repo
}

func TestExportToStdout(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "export", "--stdout", "--format", "json")
	require.NoError(t, err)

	var doc map[string]map[string]map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"Corellia"}, doc["PlanetDataBase"]["Kuat"]["ConnectedTo"])
	assert.Equal(t, []string{"Kuat"}, doc["PlanetDataBase"]["Corellia"]["ConnectedTo"])
	assert.Empty(t, doc["PlanetDataBase"]["Hoth"]["ConnectedTo"])
}

func TestExportToFile(t *testing.T) {
	root := setupEnv(t)
	output := filepath.Join(root, "PlanetDatabase.lua")

	out, err := run(t, "export", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PlanetDataBase"), string(data))
	assert.Contains(t, string(data), `"Corellia"`)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "export", "--stdout", "--format", "yaml")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	root := setupEnv(t)
	planPath := filepath.Join(root, "migration.toml")
	require.NoError(t, os.WriteFile(planPath, []byte(offsetPlan), 0o644))

	out, err := run(t, "migrate", "--plan", planPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would move 3 planet(s) with offset")
	assert.Equal(t, 0.0, loadXML(t, root).PlanetByName("Kuat").X)

	out, err = run(t, "migrate", "--plan", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Moved 3 planet(s) with offset")

	repo := loadXML(t, root)
	assert.Equal(t, 10.0, repo.PlanetByName("Kuat").X)
	assert.Equal(t, 10.0, repo.PlanetByName("Kuat").Y)
	assert.Equal(t, -890.0, repo.PlanetByName("Hoth").X)
	assert.Equal(t, 910.0, repo.PlanetByName("Hoth").Y)
}

func TestMigrateMissingPlan(t *testing.T) {
	root := setupEnv(t)

	_, err := run(t, "migrate", "--plan", filepath.Join(root, "missing.toml"))
	assert.Error(t, err)
}

func TestVariant(t *testing.T) {
	root := setupEnv(t)

	out, err := run(t, "variant", "--name", "Kuat_Ruined", "--base", "Kuat", "--x", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Kuat_Ruined (variant of Kuat)")

	created := loadXML(t, root).PlanetByName("Kuat_Ruined")
	require.NotNil(t, created)
	assert.Equal(t, "Kuat", created.VariantOf)
	assert.Equal(t, 5.0, created.X)
	assert.Equal(t, 0.0, created.Y)

	_, err = run(t, "variant", "--name", "Kuat_Ruined", "--base", "Kuat")
	assert.Error(t, err)

	_, err = run(t, "variant", "--base", "Kuat")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "token", "--subject", "cartographer")
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)
	claims, err := issuer.Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "cartographer", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	_, err = run(t, "token", "--subject", "cartographer", "--role", "emperor")
	assert.Error(t, err)
}

func TestImportIntoSQLite(t *testing.T) {
	root := setupEnv(t)

	_, err := run(t, "import")
	assert.Error(t, err, "the xml store cannot be imported into")

	out, err := run(t, "import", "--store", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 planets")

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(root, "galaxymap.db"))
	require.NoError(t, err)
	defer db.Close()

	repo, err := planet.NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil))).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Corellia", "Hoth", "Kuat"}, repo.PlanetNames())

	out, err = run(t, "export", "--store", "sqlite", "--stdout", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Corellia"`)
}

func TestUnknownStore(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "export", "--store", "mongo", "--stdout")
	assert.Error(t, err)
}
