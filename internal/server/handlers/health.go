package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"planets-galaxymap/internal/shared/response"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
	Database  string `json:"database"`
}

// Pinger is satisfied by *database.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	store string
	db    Pinger
}

// NewHealthHandler reports on db when it is not nil. The XML store has no
// database to ping.
func NewHealthHandler(store string, db Pinger) *HealthHandler {
	return &HealthHandler{store: store, db: db}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	dbStatus := "not_configured"
	if h.db != nil {
		dbStatus = "disconnected"
		if err := h.db.PingContext(r.Context()); err == nil {
			dbStatus = "connected"
		} else {
			logger.Warn("Database ping failed", "error", err)
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Store:     h.store,
		Database:  dbStatus,
	}

	response.Success(w, http.StatusOK, resp)
}
