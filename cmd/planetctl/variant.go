package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"planets-galaxymap/internal/variant"
)

func (c *cli) newVariantCmd() *cobra.Command {
	var (
		req  variant.Request
		x, y float64
	)

	cmd := &cobra.Command{
		Use:   "variant",
		Short: "Create a variant of an existing planet",
		Long: `Variant adds a planet that is a variant of an existing base planet. The new
planet starts at the base planet's position and in its data file unless
--x, --y or --file say otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("x") {
				req.X = &x
			}
			if cmd.Flags().Changed("y") {
				req.Y = &y
			}

			backend, err := c.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeBackend(backend)

			created, err := variant.NewService(backend.Provider, backend.Creator, c.logger).Create(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Created %s (variant of %s) at %g, %g in %s\n",
				created.Name, created.VariantOf, created.X, created.Y, created.ContainingFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Name of the new planet")
	cmd.Flags().StringVar(&req.BaseName, "base", "", "Name of the base planet")
	cmd.Flags().Float64Var(&x, "x", 0, "X coordinate (defaults to the base planet's)")
	cmd.Flags().Float64Var(&y, "y", 0, "Y coordinate (defaults to the base planet's)")
	cmd.Flags().StringVar(&req.File, "file", "", "Data file for the new planet (defaults to the base planet's)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}
