package server

import (
	"log/slog"
	"net/http"

	"planets-galaxymap/internal/auth"
	authHandlers "planets-galaxymap/internal/auth/handlers"
	exportHandlers "planets-galaxymap/internal/export/handlers"
	"planets-galaxymap/internal/middleware"
	migrationHandlers "planets-galaxymap/internal/migration/handlers"
	planetHandlers "planets-galaxymap/internal/planet/handlers"
	serverHandlers "planets-galaxymap/internal/server/handlers"
)

// Routes groups the handlers of the galaxy map API.
type Routes struct {
	Health       *serverHandlers.HealthHandler
	Connectivity *exportHandlers.ConnectivityHandler
	Planets      *planetHandlers.PlanetHandler
	Migrations   *migrationHandlers.MigrationHandler
	Sessions     *authHandlers.SessionHandler
	Issuer       *auth.TokenIssuer
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	// Public endpoints
	mux.Handle("/api/server/health", r.Health)
	mux.Handle("/api/connectivity", r.Connectivity)
	mux.HandleFunc("/api/planets", r.Planets.List)

	// Session endpoints
	mux.HandleFunc("/api/auth/session", r.Sessions.Login)
	mux.HandleFunc("/api/auth/logout", r.Sessions.Logout)

	// Admin-only endpoints (authenticated + admin role)
	mux.Handle("/api/migrations", middleware.RequireAdmin(r.Issuer, r.Migrations))
	mux.Handle("/api/planets/variants", middleware.RequireAdmin(r.Issuer, http.HandlerFunc(r.Planets.CreateVariant)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/connectivity", "/api/planets"},
		"session_endpoints", []string{"/api/auth/session", "/api/auth/logout"},
		"admin_endpoints", []string{"/api/migrations", "/api/planets/variants"},
	)

	return mux
}
