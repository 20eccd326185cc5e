package export

import (
	"context"
	"fmt"
	"log/slog"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/luatable"
	"planets-galaxymap/internal/shared/errors"
)

type Exporter struct {
	provider galaxy.RepositoryProvider
	sink     Sink
	logger   *slog.Logger
}

func NewExporter(provider galaxy.RepositoryProvider, sink Sink, logger *slog.Logger) *Exporter {
	return &Exporter{
		provider: provider,
		sink:     sink,
		logger:   logger,
	}
}

type Options struct {
	// Verify re-reads the rendered output before handing it to the sink.
	Verify bool
}

// Render loads a fresh snapshot and renders its connectivity table.
func (e *Exporter) Render(ctx context.Context, cfg Config, opts Options) (string, error) {
	logger := e.logger.With("component", "exporter", "operation", "render", "format", cfg.Format)

	repo, err := e.provider.Load(ctx)
	if err != nil {
		logger.Error("Failed to load repository", "error", err)
		return "", fmt.Errorf("failed to load repository: %w", err)
	}

	doc := BuildDocument(repo, cfg)
	rendered := luatable.Render(doc, cfg.Format)

	if opts.Verify {
		if err := luatable.Verify(doc, rendered, cfg.Format); err != nil {
			logger.Error("Rendered table failed verification", "error", err)
			return "", errors.WrapInternal("rendered table failed verification", err)
		}
		logger.Debug("Rendered table verified")
	}

	logger.Info("Connectivity table rendered",
		"planets", len(repo.Planets),
		"trade_routes", len(repo.TradeRoutes),
		"tables", len(doc.Children),
	)
	return rendered, nil
}

// Run renders the table and writes it to the configured sink.
func (e *Exporter) Run(ctx context.Context, cfg Config, opts Options) error {
	rendered, err := e.Render(ctx, cfg, opts)
	if err != nil {
		return err
	}

	if err := e.sink.Write(ctx, rendered); err != nil {
		e.logger.Error("Failed to write export", "component", "exporter", "error", err)
		return errors.WrapExternal("failed to write export", err)
	}
	return nil
}
