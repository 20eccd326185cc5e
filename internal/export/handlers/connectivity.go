package handlers

import (
	"log/slog"
	"net/http"

	"planets-galaxymap/internal/export"
	"planets-galaxymap/internal/luatable"
	"planets-galaxymap/internal/shared/errors"
	"planets-galaxymap/internal/shared/response"
)

// ConnectivityHandler serves the planet connectivity table rendered from
// the current galaxy, as Lua by default or as JSON with ?format=json.
type ConnectivityHandler struct {
	exporter *export.Exporter
	config   export.Config
	options  export.Options
}

func NewConnectivityHandler(exporter *export.Exporter, cfg export.Config, opts export.Options) *ConnectivityHandler {
	return &ConnectivityHandler{exporter: exporter, config: cfg, options: opts}
}

func (h *ConnectivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "connectivity")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	cfg := h.config
	if raw := r.URL.Query().Get("format"); raw != "" {
		format, err := luatable.ParseFormat(raw)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid format", err))
			return
		}
		cfg.Format = format
	}

	rendered, err := h.exporter.Render(ctx, cfg, h.options)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeInternal) {
			response.ErrorWithMessage(w, r, logger, err, "connectivity table could not be rendered")
			return
		}
		response.Error(w, r, logger, err)
		return
	}

	contentType := "text/x-lua; charset=utf-8"
	if cfg.Format == luatable.FormatJSON {
		contentType = "application/json"
	}
	response.Document(w, http.StatusOK, contentType, rendered)
}
