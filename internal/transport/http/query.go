package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/middleware"
	"enrolpulse/internal/services"
	"enrolpulse/pkg/contracts/domain"
)

// forecastLevels are the accepted values of the level query parameter
var forecastLevels = []string{string(domain.ForecastLevelState), string(domain.ForecastLevelDistrict)}

// regionPath holds the region segments of a request path
type regionPath struct {
	State    string `json:"state" validate:"required,regionname"`
	District string `json:"district" validate:"regionname"`
}

// queryParser turns request parameters into validated dashboard queries.
// On failure the problem response has already been written.
type queryParser struct {
	service      DashboardServiceInterface
	params       *middleware.QueryParamValidator
	validator    *middleware.RequestValidator
	errorHandler *apierrors.ErrorHandler
}

func newQueryParser(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *queryParser {
	return &queryParser{
		service:      service,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		validator:    middleware.NewRequestValidator(logger),
		errorHandler: errorHandler,
	}
}

// dashboardQuery reads state, district, level and horizon from the query string
func (p *queryParser) dashboardQuery(w http.ResponseWriter, r *http.Request) (services.DashboardQuery, bool) {
	fc := p.service.Forecaster()
	horizon, ok := p.params.ValidateInt(w, r, "horizon", fc.MinHorizon, fc.MaxHorizon, 0)
	if !ok {
		return services.DashboardQuery{}, false
	}

	level, ok := p.params.ValidateEnum(w, r, "level", forecastLevels, string(domain.ForecastLevelState))
	if !ok {
		return services.DashboardQuery{}, false
	}

	values := r.URL.Query()
	q := services.DashboardQuery{
		State:    strings.TrimSpace(values.Get("state")),
		District: strings.TrimSpace(values.Get("district")),
		Level:    level,
		Horizon:  horizon,
	}
	if err := p.validator.ValidateStruct(q); err != nil {
		p.errorHandler.HandleError(w, r, err)
		return services.DashboardQuery{}, false
	}
	return q, true
}

// region reads the {state} and optional {district} path segments
func (p *queryParser) region(w http.ResponseWriter, r *http.Request) (regionPath, bool) {
	rp := regionPath{
		State:    urlParam(r, "state"),
		District: urlParam(r, "district"),
	}
	if err := p.validator.ValidateStruct(rp); err != nil {
		p.errorHandler.HandleError(w, r, err)
		return regionPath{}, false
	}
	return rp, true
}

// urlParam returns a decoded, trimmed chi path parameter
func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(value); err == nil {
		value = decoded
	}
	return strings.TrimSpace(value)
}
