package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/services"
)

// DashboardHandler serves the dashboard aggregates with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	parser       *queryParser
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		parser:       newQueryParser(service, logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDashboard)
	r.Get("/forecast", h.GetForecast)

	r.Route("/states/{state}", func(r chi.Router) {
		r.Get("/overview", h.GetOverview)
		r.Get("/districts", h.GetBreakdown)
		r.Get("/districts/{district}", h.GetDeepDive)
		r.Get("/districts/{district}/trend", h.GetTrend)
	})

	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parser.dashboardQuery(w, r)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "computing dashboard view",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("state", q.State),
		slog.String("district", q.District),
		slog.String("level", q.Level),
		slog.Int("horizon", q.Horizon))

	view, err := h.service.View(r.Context(), q, services.ChannelREST)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetForecast handles GET /api/dashboard/forecast
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parser.dashboardQuery(w, r)
	if !ok {
		return
	}

	fc, err := h.service.Forecast(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   fc,
	})
}

// GetOverview handles GET /api/dashboard/states/{state}/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	region, ok := h.parser.region(w, r)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), region.State)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   overview,
	})
}

// GetBreakdown handles GET /api/dashboard/states/{state}/districts
func (h *DashboardHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	region, ok := h.parser.region(w, r)
	if !ok {
		return
	}

	breakdown, err := h.service.Breakdown(r.Context(), region.State)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   breakdown,
		"count":  len(breakdown),
	})
}

// GetDeepDive handles GET /api/dashboard/states/{state}/districts/{district}
func (h *DashboardHandler) GetDeepDive(w http.ResponseWriter, r *http.Request) {
	region, ok := h.parser.region(w, r)
	if !ok {
		return
	}

	dive, err := h.service.DeepDive(r.Context(), region.State, region.District)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dive,
	})
}

// GetTrend handles GET /api/dashboard/states/{state}/districts/{district}/trend
func (h *DashboardHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	region, ok := h.parser.region(w, r)
	if !ok {
		return
	}

	trend, err := h.service.Trend(r.Context(), region.State, region.District)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   trend,
		"count":  len(trend),
	})
}
