package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"planets-galaxymap/internal/planet"
	"planets-galaxymap/internal/shared/errors"
	"planets-galaxymap/internal/shared/response"
	"planets-galaxymap/internal/variant"
)

const maxVariantBody = 1 << 16

type PlanetHandler struct {
	service  *planet.Service
	variants *variant.Service
}

func NewPlanetHandler(service *planet.Service, variants *variant.Service) *PlanetHandler {
	return &PlanetHandler{service: service, variants: variants}
}

func (h *PlanetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_planets")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	campaign := strings.TrimSpace(r.URL.Query().Get("campaign"))

	planets, err := h.service.ListPlanets(ctx, campaign)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, planets)
}

func (h *PlanetHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_variant")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req variant.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVariantBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid variant request", err))
		return
	}

	created, err := h.variants.Create(ctx, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, created)
}
