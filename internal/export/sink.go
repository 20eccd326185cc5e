package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"planets-galaxymap/internal/shared/redis"
)

// Sink receives the rendered document.
type Sink interface {
	Write(ctx context.Context, rendered string) error
}

// FileSink writes the document to Path, replacing any previous export in
// one rename.
type FileSink struct {
	Path string
}

func (s FileSink) Write(ctx context.Context, rendered string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := slog.With("component", "export", "operation", "write_file", "path", s.Path)

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".planetdb-*")
	if err != nil {
		logger.Error("Failed to create temporary file", "error", err)
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(rendered); err != nil {
		_ = tmp.Close()
		logger.Error("Failed to write export", "error", err)
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		logger.Error("Failed to move export into place", "error", err)
		return fmt.Errorf("failed to move export into place: %w", err)
	}

	logger.Info("Export written", "size_bytes", len(rendered))
	return nil
}

// RedisSink stores the document under Key and announces it on Channel so
// that running game tooling can pick it up without touching the file system.
type RedisSink struct {
	Client  redis.Publisher
	Key     string
	Channel string
}

func (s RedisSink) Write(ctx context.Context, rendered string) error {
	logger := slog.With("component", "export", "operation", "write_redis", "key", s.Key)

	if err := s.Client.Set(ctx, s.Key, rendered, 0).Err(); err != nil {
		logger.Error("Failed to store export in Redis", "error", err)
		return fmt.Errorf("failed to store export in redis: %w", err)
	}

	if s.Channel != "" {
		if err := s.Client.Publish(ctx, s.Channel, s.Key).Err(); err != nil {
			logger.Error("Failed to publish export notification", "error", err)
			return fmt.Errorf("failed to publish export notification: %w", err)
		}
	}

	logger.Info("Export stored in Redis", "size_bytes", len(rendered), "channel", s.Channel)
	return nil
}

// MultiSink writes to every sink in order and stops at the first failure.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, rendered string) error {
	for _, s := range m {
		if err := s.Write(ctx, rendered); err != nil {
			return err
		}
	}
	return nil
}
