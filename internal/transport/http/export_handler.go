package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/exporter"
)

// ExportHandler serves CSV and XLSX downloads of the dashboard tables
type ExportHandler struct {
	service      DashboardServiceInterface
	parser       *queryParser
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		parser:       newQueryParser(service, logger, errorHandler),
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/districts.{format}", h.ExportDistricts)
	r.Get("/trend.{format}", h.ExportTrend)
	r.Get("/forecast.{format}", h.ExportForecast)

	return r
}

// ExportDistricts handles GET /api/export/districts.{csv,xlsx}
func (h *ExportHandler) ExportDistricts(w http.ResponseWriter, r *http.Request) {
	format, ok := h.format(w, r)
	if !ok {
		return
	}
	q, ok := h.parser.dashboardQuery(w, r)
	if !ok {
		return
	}

	region, err := h.service.ResolveRegion(r.Context(), q.State, q.District)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	breakdown, err := h.service.Breakdown(r.Context(), region.State)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.send(w, r, exporter.Filename("districts", format, region.State), format,
		exporter.DistrictTable(region.State, breakdown))
}

// ExportTrend handles GET /api/export/trend.{csv,xlsx}
func (h *ExportHandler) ExportTrend(w http.ResponseWriter, r *http.Request) {
	format, ok := h.format(w, r)
	if !ok {
		return
	}
	q, ok := h.parser.dashboardQuery(w, r)
	if !ok {
		return
	}

	region, err := h.service.ResolveRegion(r.Context(), q.State, q.District)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	trend, err := h.service.Trend(r.Context(), region.State, region.District)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.send(w, r, exporter.Filename("trend", format, region.State, region.District), format,
		exporter.TrendTable(region, trend))
}

// ExportForecast handles GET /api/export/forecast.{csv,xlsx}
func (h *ExportHandler) ExportForecast(w http.ResponseWriter, r *http.Request) {
	format, ok := h.format(w, r)
	if !ok {
		return
	}
	q, ok := h.parser.dashboardQuery(w, r)
	if !ok {
		return
	}

	fc, err := h.service.Forecast(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.send(w, r, exporter.Filename("forecast", format, string(fc.Level), fc.Region), format,
		exporter.ForecastTable(fc))
}

func (h *ExportHandler) format(w http.ResponseWriter, r *http.Request) (exporter.Format, bool) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be one of: csv, xlsx"))
		return "", false
	}
	return format, true
}

// send encodes the table in memory so encoding failures still produce a
// problem response
func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, filename string, format exporter.Format, table exporter.Table) {
	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, table); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to encode %s: %w", filename, err))
		return
	}

	h.logger.InfoContext(r.Context(), "serving export",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", filename),
		slog.Int("rows", len(table.Rows)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}
}
