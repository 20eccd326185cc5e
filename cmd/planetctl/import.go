package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"planets-galaxymap/internal/gamedata"
	"planets-galaxymap/internal/shared/config"
)

func (c *cli) newImportCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the game XML files into the database store",
		Long: `Import reads planets, trade routes and campaigns from the game XML files and
replaces the contents of the configured Postgres or SQLite store with them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if c.cfg.Data.Store == config.StoreXML {
				return fmt.Errorf("import needs a database store, run with --store postgres or --store sqlite")
			}
			if source == "" {
				source = c.cfg.Data.Path
			}

			repo, err := gamedata.NewLoader(source, c.logger).Load(ctx)
			if err != nil {
				return err
			}

			backend, err := c.openBackend(ctx)
			if err != nil {
				return err
			}
			defer c.closeBackend(backend)

			if err := backend.SQL.Import(ctx, repo); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Imported %d planets, %d trade routes and %d campaigns\n",
				len(repo.Planets), len(repo.TradeRoutes), len(repo.Campaigns))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "from", "", "Game data directory to read (defaults to DATA_PATH)")

	return cmd
}
