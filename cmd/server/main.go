package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planets-galaxymap/internal/auth"
	"planets-galaxymap/internal/middleware"
	"planets-galaxymap/internal/server"
	"planets-galaxymap/internal/shared/config"
	"planets-galaxymap/internal/shared/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig

	log := logger.Init(cfg.Logging)
	log = log.With("component", "main")

	if err := cfg.ValidateServer(); err != nil {
		log.Error("Invalid server configuration", "error", err)
		os.Exit(1)
	}

	log.Info("Starting galaxy map server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"store", cfg.Data.Store,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := server.OpenBackend(ctx, cfg, slog.Default())
	if err != nil {
		log.Error("Failed to open data store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Failed to close data store", "error", err)
		}
	}()

	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	if err != nil {
		log.Error("Failed to create token issuer", "error", err)
		os.Exit(1)
	}

	routes, err := server.NewRoutes(cfg, backend, issuer, slog.Default())
	if err != nil {
		log.Error("Failed to configure routes", "error", err)
		os.Exit(1)
	}

	var handler http.Handler = routes.Setup()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		defer limiter.Stop()
		handler = limiter.Middleware(handler)
	}
	handler = middleware.NewCORS(cfg.Frontend).Middleware(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		return
	}
	log.Info("Server stopped")
}
