package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"planets-galaxymap/internal/migration"
	"planets-galaxymap/internal/planet"
	"planets-galaxymap/internal/shared/errors"
	"planets-galaxymap/internal/shared/response"
)

const (
	maxPlanBody     = 1 << 20
	defaultRunLimit = 20
)

// RunLister is implemented by stores that keep migration history.
type RunLister interface {
	MigrationRuns(ctx context.Context, limit int) ([]planet.MigrationRun, error)
}

type MigrationHandler struct {
	engine   *migration.Engine
	defaults migration.Plan
	runs     RunLister

	// mu serializes runs; each run loads its own snapshot and the XML writer
	// replaces whole files.
	mu sync.Mutex
}

// NewMigrationHandler builds the handler. runs may be nil when the store
// keeps no history.
func NewMigrationHandler(engine *migration.Engine, defaults migration.Plan, runs RunLister) *MigrationHandler {
	return &MigrationHandler{engine: engine, defaults: defaults, runs: runs}
}

func (h *MigrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		response.Error(w, r, slog.With("handler", "migrations"), errors.MethodNotAllowed(r.Method))
	}
}

func (h *MigrationHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_migration")

	plan, err := migration.DecodeJSON(http.MaxBytesReader(w, r.Body, maxPlanBody), h.defaults)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cfg, err := plan.Config()
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if raw := r.URL.Query().Get("dry_run"); raw != "" {
		cfg.DryRun, err = strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid dry_run flag", err))
			return
		}
	}

	h.mu.Lock()
	result, err := h.engine.Run(ctx, cfg)
	h.mu.Unlock()
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	status := http.StatusCreated
	if result.DryRun {
		status = http.StatusOK
	}
	response.Success(w, status, result)
}

func (h *MigrationHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_migrations")

	if h.runs == nil {
		response.Error(w, r, logger, errors.NotFoundf("migration history is only kept by database stores"))
		return
	}

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(w, r, logger, errors.Validationf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	runs, err := h.runs.MigrationRuns(ctx, limit)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if runs == nil {
		runs = []planet.MigrationRun{}
	}

	response.Success(w, http.StatusOK, runs)
}
