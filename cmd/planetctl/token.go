package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"planets-galaxymap/internal/auth"
)

func (c *cli) newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			issuer, err := auth.NewTokenIssuer(c.cfg.Auth.JWTSecret, c.cfg.Auth.TokenExpiration)
			if err != nil {
				return err
			}

			token, err := issuer.Generate(subject, role)
			if err != nil {
				return err
			}

			c.logger.Info("Operator token issued", "subject", subject, "role", role, "expires_in", issuer.Expiration())
			_, err = fmt.Fprintln(c.out, token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Operator name recorded in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "Role: admin or viewer")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
