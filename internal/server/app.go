package server

import (
	"context"
	"fmt"
	"log/slog"

	"planets-galaxymap/internal/auth"
	authHandlers "planets-galaxymap/internal/auth/handlers"
	"planets-galaxymap/internal/connectivity"
	"planets-galaxymap/internal/export"
	exportHandlers "planets-galaxymap/internal/export/handlers"
	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/gamedata"
	"planets-galaxymap/internal/luatable"
	"planets-galaxymap/internal/migration"
	migrationHandlers "planets-galaxymap/internal/migration/handlers"
	"planets-galaxymap/internal/planet"
	planetHandlers "planets-galaxymap/internal/planet/handlers"
	serverHandlers "planets-galaxymap/internal/server/handlers"
	"planets-galaxymap/internal/shared/config"
	"planets-galaxymap/internal/shared/database"
	"planets-galaxymap/internal/variant"
)

// Backend holds the collaborators for the configured store.
type Backend struct {
	Store    string
	Provider galaxy.RepositoryProvider
	Writer   galaxy.CoordinateWriter
	Creator  galaxy.PlanetCreator
	// DB and SQL are nil for the XML store.
	DB  *database.DB
	SQL *planet.Store
}

func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	logger = logger.With("component", "backend", "store", cfg.Data.Store)

	if cfg.Data.Store == config.StoreXML {
		logger.Info("Using game XML files", "path", cfg.Data.Path)
		return &Backend{
			Store:    cfg.Data.Store,
			Provider: gamedata.NewLoader(cfg.Data.Path, logger),
			Writer:   gamedata.NewWriter(cfg.Data.Path, logger),
			Creator:  gamedata.NewWriter(cfg.Data.Path, logger),
		}, nil
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := planet.NewStore(db, logger)
	return &Backend{
		Store:    cfg.Data.Store,
		Provider: store,
		Writer:   store,
		Creator:  store,
		DB:       db,
		SQL:      store,
	}, nil
}

// NewSQLBackend wraps an already migrated database.
func NewSQLBackend(store string, db *database.DB, logger *slog.Logger) *Backend {
	s := planet.NewStore(db, logger)
	return &Backend{Store: store, Provider: s, Writer: s, Creator: s, DB: db, SQL: s}
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// ExportConfig converts the environment settings into an export
// configuration.
func ExportConfig(cfg config.ExportConfig) (export.Config, error) {
	format, err := luatable.ParseFormat(cfg.Format)
	if err != nil {
		return export.Config{}, err
	}
	return export.Config{
		CampaignAliases: cfg.CampaignAliases,
		Connectivity: connectivity.Config{
			AutoConnectionDistance: cfg.AutoConnectionDistance,
			Ignore:                 cfg.Ignore,
		},
		RootName: cfg.RootName,
		Format:   format,
	}, nil
}

func PlanDefaults(cfg config.MigrationConfig) migration.Plan {
	return migration.DefaultPlan(cfg.Ignore, cfg.CoordDigits)
}

// NewRoutes wires every API handler against backend.
func NewRoutes(cfg *config.Config, backend *Backend, issuer *auth.TokenIssuer, logger *slog.Logger) (*Routes, error) {
	exportCfg, err := ExportConfig(cfg.Export)
	if err != nil {
		return nil, err
	}

	exporter := export.NewExporter(backend.Provider, nil, logger)
	engine := migration.NewEngine(backend.Provider, backend.Writer, logger)

	var runs migrationHandlers.RunLister
	if backend.SQL != nil {
		runs = backend.SQL
	}

	var pinger serverHandlers.Pinger
	if backend.DB != nil {
		pinger = backend.DB
	}

	return &Routes{
		Health:       serverHandlers.NewHealthHandler(backend.Store, pinger),
		Connectivity: exportHandlers.NewConnectivityHandler(exporter, exportCfg, export.Options{Verify: cfg.Export.Verify}),
		Planets: planetHandlers.NewPlanetHandler(
			planet.NewService(backend.Provider, logger),
			variant.NewService(backend.Provider, backend.Creator, logger),
		),
		Migrations: migrationHandlers.NewMigrationHandler(engine, PlanDefaults(cfg.Migration), runs),
		Sessions:   authHandlers.NewSessionHandler(issuer, cfg.Auth, cfg.Frontend),
		Issuer:     issuer,
	}, nil
}
