package planet

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/geometry"
	"planets-galaxymap/internal/migration"
	"planets-galaxymap/internal/shared/database"
	"planets-galaxymap/internal/shared/errors"
)

// Store keeps the galaxy in a SQL database. It implements the repository
// provider, coordinate writer and planet creator of the galaxy package and
// records migration runs.
type Store struct {
	db     *database.DB
	logger *slog.Logger
}

func NewStore(db *database.DB, logger *slog.Logger) *Store {
	logger.Debug("Initializing planet store")

	return &Store{
		db:     db,
		logger: logger,
	}
}

func (s *Store) query(ctx context.Context, exec database.Executor, query string, args []interface{}, scan func(*sql.Rows) error) error {
	rows, err := exec.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("Failed to close rows", "error", err)
		}
	}()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Load reads a consistent snapshot of the whole galaxy.
func (s *Store) Load(ctx context.Context) (*galaxy.Repository, error) {
	logger := s.logger.With("component", "planet_store", "operation", "load")
	logger.Debug("Loading galaxy from database")

	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return nil, errors.WrapExternal("failed to load galaxy", err)
	}
	defer tx.RollbackUnlessDone(logger)

	repo := &galaxy.Repository{}
	planets := map[string]*galaxy.Planet{}
	err = s.query(ctx, tx, `
		SELECT name, x, y, containing_file, variant_of
		FROM planets
		ORDER BY ord, name
	`, nil, func(rows *sql.Rows) error {
		var p galaxy.Planet
		if err := rows.Scan(&p.Name, &p.X, &p.Y, &p.ContainingFile, &p.VariantOf); err != nil {
			return fmt.Errorf("failed to scan planet: %w", err)
		}
		repo.Planets = append(repo.Planets, &p)
		planets[p.Name] = &p
		return nil
	})
	if err != nil {
		logger.Error("Failed to query planets", "error", err)
		return nil, errors.WrapExternal("failed to load planets", err)
	}

	routes := map[string]*galaxy.TradeRoute{}
	err = s.query(ctx, tx, `
		SELECT name, point_a, point_b
		FROM trade_routes
		ORDER BY ord, name
	`, nil, func(rows *sql.Rows) error {
		var name, a, b string
		if err := rows.Scan(&name, &a, &b); err != nil {
			return fmt.Errorf("failed to scan trade route: %w", err)
		}
		route := &galaxy.TradeRoute{Name: name, Start: planets[a], End: planets[b]}
		if route.Start == nil || route.End == nil {
			return fmt.Errorf("trade route %s connects unknown planet", name)
		}
		repo.TradeRoutes = append(repo.TradeRoutes, route)
		routes[name] = route
		return nil
	})
	if err != nil {
		logger.Error("Failed to query trade routes", "error", err)
		return nil, errors.WrapExternal("failed to load trade routes", err)
	}

	campaigns := map[string]*galaxy.Campaign{}
	err = s.query(ctx, tx, `SELECT name FROM campaigns ORDER BY ord, name`, nil, func(rows *sql.Rows) error {
		var c galaxy.Campaign
		if err := rows.Scan(&c.Name); err != nil {
			return fmt.Errorf("failed to scan campaign: %w", err)
		}
		repo.Campaigns = append(repo.Campaigns, &c)
		campaigns[c.Name] = &c
		return nil
	})
	if err != nil {
		logger.Error("Failed to query campaigns", "error", err)
		return nil, errors.WrapExternal("failed to load campaigns", err)
	}

	err = s.query(ctx, tx, `
		SELECT campaign, planet
		FROM campaign_planets
		ORDER BY campaign, ord
	`, nil, func(rows *sql.Rows) error {
		var campaign, planet string
		if err := rows.Scan(&campaign, &planet); err != nil {
			return fmt.Errorf("failed to scan campaign planet: %w", err)
		}
		if c, p := campaigns[campaign], planets[planet]; c != nil && p != nil {
			c.Planets = append(c.Planets, p)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to query campaign planets", "error", err)
		return nil, errors.WrapExternal("failed to load campaign planets", err)
	}

	err = s.query(ctx, tx, `
		SELECT campaign, trade_route
		FROM campaign_trade_routes
		ORDER BY campaign, ord
	`, nil, func(rows *sql.Rows) error {
		var campaign, route string
		if err := rows.Scan(&campaign, &route); err != nil {
			return fmt.Errorf("failed to scan campaign trade route: %w", err)
		}
		if c, r := campaigns[campaign], routes[route]; c != nil && r != nil {
			c.TradeRoutes = append(c.TradeRoutes, r)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to query campaign trade routes", "error", err)
		return nil, errors.WrapExternal("failed to load campaign trade routes", err)
	}

	logger.Debug("Galaxy loaded",
		"planets", len(repo.Planets),
		"trade_routes", len(repo.TradeRoutes),
		"campaigns", len(repo.Campaigns),
	)
	return repo, nil
}

// WriteCoordinates updates all planets in one transaction. An unknown name
// rolls the whole write back.
func (s *Store) WriteCoordinates(ctx context.Context, coords map[string]geometry.Vec2) error {
	logger := s.logger.With("component", "planet_store", "operation", "write_coordinates", "planets", len(coords))

	names := make([]string, 0, len(coords))
	for name := range coords {
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return errors.WrapExternal("failed to write coordinates", err)
	}
	defer tx.RollbackUnlessDone(logger)

	query := s.db.Rebind(`
		UPDATE planets
		SET x = $1, y = $2, updated_at = CURRENT_TIMESTAMP
		WHERE name = $3
	`)
	for _, name := range names {
		v := coords[name]
		res, err := tx.ExecContext(ctx, query, v.X, v.Y, name)
		if err != nil {
			logger.Error("Failed to update planet", "planet", name, "error", err)
			return errors.WrapExternal("failed to write coordinates", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.WrapExternal("failed to write coordinates", err)
		}
		if affected == 0 {
			logger.Warn("Planet not found, rolling back", "planet", name)
			return errors.NotFoundf("planet %q not found", name)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit coordinates", "error", err)
		return errors.WrapExternal("failed to write coordinates", err)
	}

	logger.Info("Coordinates written")
	return nil
}

// CreatePlanet appends planet after all existing planets.
func (s *Store) CreatePlanet(ctx context.Context, planet *galaxy.Planet) error {
	logger := s.logger.With("component", "planet_store", "operation", "create_planet", "planet", planet.Name)

	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return errors.WrapExternal("failed to create planet", err)
	}
	defer tx.RollbackUnlessDone(logger)

	var exists bool
	err = tx.QueryRowContext(ctx, s.db.Rebind("SELECT EXISTS(SELECT 1 FROM planets WHERE name = $1)"), planet.Name).Scan(&exists)
	if err != nil {
		logger.Error("Failed to check planet name", "error", err)
		return errors.WrapExternal("failed to create planet", err)
	}
	if exists {
		return errors.Conflictf("planet %q already exists", planet.Name)
	}

	var ord int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(ord), 0) + 1 FROM planets").Scan(&ord); err != nil {
		logger.Error("Failed to determine planet order", "error", err)
		return errors.WrapExternal("failed to create planet", err)
	}

	_, err = tx.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO planets (name, x, y, containing_file, variant_of, ord)
		VALUES ($1, $2, $3, $4, $5, $6)
	`), planet.Name, planet.X, planet.Y, planet.ContainingFile, planet.VariantOf, ord)
	if err != nil {
		logger.Error("Failed to insert planet", "error", err)
		return errors.WrapExternal("failed to create planet", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit planet", "error", err)
		return errors.WrapExternal("failed to create planet", err)
	}

	logger.Info("Planet created", "file", planet.ContainingFile)
	return nil
}

// Import replaces the stored galaxy with repo.
func (s *Store) Import(ctx context.Context, repo *galaxy.Repository) error {
	logger := s.logger.With("component", "planet_store", "operation", "import",
		"planets", len(repo.Planets),
		"trade_routes", len(repo.TradeRoutes),
		"campaigns", len(repo.Campaigns),
	)
	logger.Info("Importing galaxy")

	seen := make(map[string]bool, len(repo.Planets))
	for _, p := range repo.Planets {
		if seen[p.Name] {
			return errors.Validationf("duplicate planet name %q", p.Name)
		}
		seen[p.Name] = true
	}

	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return errors.WrapExternal("failed to import galaxy", err)
	}
	defer tx.RollbackUnlessDone(logger)

	for _, table := range []string{"campaign_trade_routes", "campaign_planets", "campaigns", "trade_routes", "planets"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			logger.Error("Failed to clear table", "table", table, "error", err)
			return errors.WrapExternal("failed to import galaxy", err)
		}
	}

	exec := func(query string, args ...interface{}) error {
		_, err := tx.ExecContext(ctx, s.db.Rebind(query), args...)
		return err
	}

	for i, p := range repo.Planets {
		if err := exec(`
			INSERT INTO planets (name, x, y, containing_file, variant_of, ord)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.Name, p.X, p.Y, p.ContainingFile, p.VariantOf, i+1); err != nil {
			logger.Error("Failed to insert planet", "planet", p.Name, "error", err)
			return errors.WrapExternal("failed to import planets", err)
		}
	}

	for i, r := range repo.TradeRoutes {
		if err := exec(`
			INSERT INTO trade_routes (name, point_a, point_b, ord)
			VALUES ($1, $2, $3, $4)
		`, r.Name, r.Start.Name, r.End.Name, i+1); err != nil {
			logger.Error("Failed to insert trade route", "trade_route", r.Name, "error", err)
			return errors.WrapExternal("failed to import trade routes", err)
		}
	}

	for i, c := range repo.Campaigns {
		if err := exec(`INSERT INTO campaigns (name, ord) VALUES ($1, $2)`, c.Name, i+1); err != nil {
			logger.Error("Failed to insert campaign", "campaign", c.Name, "error", err)
			return errors.WrapExternal("failed to import campaigns", err)
		}
		for j, p := range c.Planets {
			if err := exec(`
				INSERT INTO campaign_planets (campaign, planet, ord)
				VALUES ($1, $2, $3)
			`, c.Name, p.Name, j+1); err != nil {
				logger.Error("Failed to insert campaign planet", "campaign", c.Name, "planet", p.Name, "error", err)
				return errors.WrapExternal("failed to import campaigns", err)
			}
		}
		for j, r := range c.TradeRoutes {
			if err := exec(`
				INSERT INTO campaign_trade_routes (campaign, trade_route, ord)
				VALUES ($1, $2, $3)
			`, c.Name, r.Name, j+1); err != nil {
				logger.Error("Failed to insert campaign trade route", "campaign", c.Name, "trade_route", r.Name, "error", err)
				return errors.WrapExternal("failed to import campaigns", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit import", "error", err)
		return errors.WrapExternal("failed to import galaxy", err)
	}

	logger.Info("Galaxy imported")
	return nil
}

// RecordMigrationRun keeps the audit trail of applied migrations.
func (s *Store) RecordMigrationRun(ctx context.Context, result *migration.Result) error {
	logger := s.logger.With("component", "planet_store", "operation", "record_migration_run", "run_id", result.RunID)

	coords, err := json.Marshal(result.Coordinates)
	if err != nil {
		return errors.WrapInternal("failed to encode coordinates", err)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO migration_runs (id, movement, selected, coordinates, seq)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(seq), 0) + 1 FROM migration_runs))
	`), result.RunID.String(), result.Movement, len(result.Selected), string(coords))
	if err != nil {
		logger.Error("Failed to record migration run", "error", err)
		return errors.WrapExternal("failed to record migration run", err)
	}

	logger.Debug("Migration run recorded")
	return nil
}

// MigrationRuns returns the latest runs, newest first. created_at only
// has second resolution, so the order comes from seq.
func (s *Store) MigrationRuns(ctx context.Context, limit int) ([]MigrationRun, error) {
	logger := s.logger.With("component", "planet_store", "operation", "migration_runs", "limit", limit)

	var runs []MigrationRun
	err := s.query(ctx, s.db, `
		SELECT id, movement, selected, coordinates, created_at
		FROM migration_runs
		ORDER BY seq DESC
		LIMIT $1
	`, []interface{}{limit}, func(rows *sql.Rows) error {
		var run MigrationRun
		var coords string
		if err := rows.Scan(&run.ID, &run.Movement, &run.Selected, &coords, &run.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan migration run: %w", err)
		}
		if err := json.Unmarshal([]byte(coords), &run.Coordinates); err != nil {
			return fmt.Errorf("failed to decode coordinates of run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
		return nil
	})
	if err != nil {
		logger.Error("Failed to query migration runs", "error", err)
		return nil, errors.WrapExternal("failed to list migration runs", err)
	}

	return runs, nil
}
