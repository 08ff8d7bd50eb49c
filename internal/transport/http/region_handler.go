package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "enrolpulse/internal/errors"
)

// RegionHandler lists the states and districts present in the dataset
type RegionHandler struct {
	service      DashboardServiceInterface
	parser       *queryParser
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RegionHandler {
	return &RegionHandler{
		service:      service,
		parser:       newQueryParser(service, logger, errorHandler),
		logger:       logger.With(slog.String("component", "region_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the region routes
func (h *RegionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/states", h.GetStates)
	r.Get("/states/{state}/districts", h.GetDistricts)

	return r
}

// GetStates handles GET /api/regions/states
func (h *RegionHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.service.States(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   states,
		"count":  len(states),
	})
}

// GetDistricts handles GET /api/regions/states/{state}/districts
func (h *RegionHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	region, ok := h.parser.region(w, r)
	if !ok {
		return
	}

	districts, err := h.service.Districts(r.Context(), region.State)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"state":  region.State,
		"data":   districts,
		"count":  len(districts),
	})
}
