package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"planets-galaxymap/internal/export"
	"planets-galaxymap/internal/server"
	"planets-galaxymap/internal/shared/redis"
)

type exportFlags struct {
	verify bool
	format string
	output string
	redis  bool
	stdout bool
}

func (c *cli) newExportCmd() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the planet connectivity table",
		Long: `Export resolves which planets each planet is connected to, through trade
routes or by being within the auto connection distance, and writes the
result as a Lua (or JSON) table.

Only campaigns listed in CAMPAIGN_ALIASES are exported, each under its alias.
Without aliases the whole galaxy is exported directly under the root table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runExport(cmd, f)
		},
	}

	cmd.Flags().BoolVar(&f.verify, "verify", true, "Re-read the rendered table before writing it (overrides EXPORT_VERIFY)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: lua or json (overrides EXPORT_FORMAT)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (overrides EXPORT_OUTPUT)")
	cmd.Flags().BoolVar(&f.redis, "redis", false, "Also store the table in Redis and announce it")
	cmd.Flags().BoolVar(&f.stdout, "stdout", false, "Print the table instead of writing a file")

	return cmd
}

func (c *cli) runExport(cmd *cobra.Command, f exportFlags) error {
	ctx := cmd.Context()
	exportCfg := c.cfg.Export

	if cmd.Flags().Changed("verify") {
		exportCfg.Verify = f.verify
	}
	if f.format != "" {
		exportCfg.Format = f.format
	}
	if f.output != "" {
		exportCfg.Output = f.output
	}

	cfg, err := server.ExportConfig(exportCfg)
	if err != nil {
		return err
	}
	opts := export.Options{Verify: exportCfg.Verify}

	backend, err := c.openBackend(ctx)
	if err != nil {
		return err
	}
	defer c.closeBackend(backend)

	if f.stdout {
		rendered, err := export.NewExporter(backend.Provider, nil, c.logger).Render(ctx, cfg, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(c.out, rendered)
		return err
	}

	sinks := export.MultiSink{export.FileSink{Path: exportCfg.Output}}
	if f.redis {
		redisCfg := c.cfg.Redis
		redisCfg.Enabled = true
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		sinks = append(sinks, export.RedisSink{Client: client, Key: redisCfg.Key, Channel: redisCfg.Channel})
	}

	if err := export.NewExporter(backend.Provider, sinks, c.logger).Run(ctx, cfg, opts); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Connectivity table written to %s\n", exportCfg.Output)
	return nil
}
