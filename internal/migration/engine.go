// Package migration moves a selected set of planets and persists their new
// coordinates.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/geometry"
	"planets-galaxymap/internal/selection"
	"planets-galaxymap/internal/shared/errors"
)

type Config struct {
	Selection selection.Criteria
	Movement  geometry.Movement
	// Ignore names pseudo planets, such as galaxy core art models, that are
	// never moved regardless of the selection.
	Ignore   []string
	Decimals int
	// DryRun computes the new coordinates without writing them.
	DryRun bool
}

type Result struct {
	RunID       uuid.UUID                `json:"run_id"`
	Movement    string                   `json:"movement"`
	Selected    []string                 `json:"selected"`
	Coordinates map[string]geometry.Vec2 `json:"coordinates"`
	DryRun      bool                     `json:"dry_run"`
}

// Recorder is implemented by writers that keep an audit trail of runs.
type Recorder interface {
	RecordMigrationRun(ctx context.Context, result *Result) error
}

type Engine struct {
	provider galaxy.RepositoryProvider
	writer   galaxy.CoordinateWriter
	logger   *slog.Logger
}

func NewEngine(provider galaxy.RepositoryProvider, writer galaxy.CoordinateWriter, logger *slog.Logger) *Engine {
	return &Engine{
		provider: provider,
		writer:   writer,
		logger:   logger,
	}
}

// SelectMigrating returns the planets of repo that match criteria and are
// not ignored, in repository order.
func SelectMigrating(repo *galaxy.Repository, criteria selection.Criteria, ignore []string) []*galaxy.Planet {
	ignored := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		ignored[name] = struct{}{}
	}

	allowed := selection.Build(repo, criteria)

	var migrating []*galaxy.Planet
	for _, planet := range repo.Planets {
		if _, skip := ignored[planet.Name]; skip {
			continue
		}
		if allowed(planet) {
			migrating = append(migrating, planet)
		}
	}
	return migrating
}

// Run performs one migration against a freshly loaded snapshot. Planets
// outside the selection are never handed to the writer. Partial writes on
// failure are up to the writer.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	runID := uuid.New()
	logger := e.logger.With(
		"component", "migration_engine",
		"operation", "run",
		"run_id", runID,
		"movement", cfg.Movement.Kind,
		"dry_run", cfg.DryRun,
	)
	logger.Info("Starting planet migration")

	repo, err := e.provider.Load(ctx)
	if err != nil {
		logger.Error("Failed to load repository", "error", err)
		return nil, fmt.Errorf("failed to load repository: %w", err)
	}

	migrating := SelectMigrating(repo, cfg.Selection, cfg.Ignore)
	logger.Info("Planets selected for migration", "selected", len(migrating), "total", len(repo.Planets))

	if err := checkUniqueNames(migrating); err != nil {
		logger.Error("Migrating set is ambiguous", "error", err)
		return nil, err
	}

	if err := geometry.Move(cfg.Movement, migrating, cfg.Decimals); err != nil {
		return nil, errors.WrapValidation("failed to move planets", err)
	}

	result := &Result{
		RunID:       runID,
		Movement:    cfg.Movement.Kind.String(),
		Selected:    make([]string, 0, len(migrating)),
		Coordinates: CoordinatesByName(migrating),
		DryRun:      cfg.DryRun,
	}
	for _, p := range migrating {
		result.Selected = append(result.Selected, p.Name)
	}

	if cfg.DryRun {
		logger.Info("Dry run finished, coordinates not written")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := e.writer.WriteCoordinates(ctx, result.Coordinates); err != nil {
		logger.Error("Failed to write coordinates", "error", err)
		return nil, fmt.Errorf("failed to write coordinates: %w", err)
	}

	if recorder, ok := e.writer.(Recorder); ok {
		if err := recorder.RecordMigrationRun(ctx, result); err != nil {
			// coordinates are already persisted at this point
			logger.Warn("Failed to record migration run", "error", err)
		}
	}

	logger.Info("Planet migration completed", "written", len(result.Coordinates))
	return result, nil
}

// CoordinatesByName maps each planet's name to its current position.
func CoordinatesByName(planets []*galaxy.Planet) map[string]geometry.Vec2 {
	coords := make(map[string]geometry.Vec2, len(planets))
	for _, p := range planets {
		coords[p.Name] = p.Position()
	}
	return coords
}

func checkUniqueNames(planets []*galaxy.Planet) error {
	seen := make(map[string]int, len(planets))
	var dups []string
	for _, p := range planets {
		seen[p.Name]++
		if seen[p.Name] == 2 {
			dups = append(dups, p.Name)
		}
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return errors.Validationf("duplicate planet names in migration: %v", dups)
	}
	return nil
}
