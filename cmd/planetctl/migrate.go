package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"planets-galaxymap/internal/migration"
	"planets-galaxymap/internal/server"
)

func (c *cli) newMigrateCmd() *cobra.Command {
	var (
		planPath string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move a selection of planets",
		Long: `Migrate loads a migration plan (TOML, YAML or JSON), selects the planets it
names, applies one offset, stretch or rotation to all of them and writes the
new coordinates back to the store.

Example plan:

  criteria = ["campaigns"]
  campaigns = ["Sandbox_Core"]

  [movement]
  type = "rotation"
  angle = 90
  pivot = [0, 0]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if planPath == "" {
				planPath = c.cfg.Migration.PlanPath
			}

			plan, err := migration.LoadPlan(planPath, server.PlanDefaults(c.cfg.Migration))
			if err != nil {
				return err
			}
			cfg, err := plan.Config()
			if err != nil {
				return err
			}
			cfg.DryRun = dryRun

			backend, err := c.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeBackend(backend)

			result, err := migration.NewEngine(backend.Provider, backend.Writer, c.logger).Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			c.printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "Migration plan file (overrides MIGRATION_PLAN)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the new coordinates without writing them")

	return cmd
}

func (c *cli) printResult(result *migration.Result) {
	verb := "Moved"
	if result.DryRun {
		verb = "Would move"
	}
	fmt.Fprintf(c.out, "%s %d planet(s) with %s (run %s)\n", verb, len(result.Selected), result.Movement, result.RunID)

	names := make([]string, 0, len(result.Coordinates))
	for name := range result.Coordinates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := result.Coordinates[name]
		fmt.Fprintf(c.out, "  %s\t%g, %g\n", name, p.X, p.Y)
	}
}
