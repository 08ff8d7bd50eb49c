package http

import (
	"net/http"

	apierrors "enrolpulse/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the Prometheus exporter handler, which is nil
// when metric export is disabled
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		apierrors.WriteError(w, apierrors.New(http.StatusNotFound, "METRICS_DISABLED", "Metric export is disabled"))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
