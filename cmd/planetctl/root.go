package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"planets-galaxymap/internal/server"
	"planets-galaxymap/internal/shared/config"
	"planets-galaxymap/internal/shared/logger"
)

// cli carries the state shared by every subcommand once the root
// command has loaded the configuration.
type cli struct {
	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger

	store    string
	dataPath string
	logLevel string
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:   "planetctl",
		Short: "Maintain the galactic map of planets",
		Long: `planetctl moves planets in bulk and exports the planet connectivity
table read by the game's Lua scripts.

Data is read from the game XML files (STORE=xml) or from a Postgres or
SQLite database (STORE=postgres|sqlite). Settings come from the environment
and an optional .env file; flags override them.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.load,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&c.store, "store", "", "Data store: xml, postgres or sqlite (overrides STORE)")
	rootCmd.PersistentFlags().StringVar(&c.dataPath, "data", "", "Game data directory (overrides DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		c.newExportCmd(),
		c.newMigrateCmd(),
		c.newVariantCmd(),
		c.newTokenCmd(),
		c.newImportCmd(),
	)

	return rootCmd
}

func (c *cli) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if c.store != "" {
		cfg.Data.Store = c.store
	}
	if c.dataPath != "" {
		cfg.Data.Path = c.dataPath
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	switch cfg.Data.Store {
	case config.StoreXML, config.StorePostgres, config.StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", cfg.Data.Store)
	}

	c.cfg = cfg
	c.logger = logger.InitWriter(cmd.ErrOrStderr(), cfg.Logging)
	return nil
}

// openBackend opens the configured store. The caller closes it.
func (c *cli) openBackend(ctx context.Context) (*server.Backend, error) {
	backend, err := server.OpenBackend(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", c.cfg.Data.Store, err)
	}
	return backend, nil
}

func (c *cli) closeBackend(backend *server.Backend) {
	if err := backend.Close(); err != nil {
		c.logger.Error("Failed to close data store", "error", err)
	}
}
