package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"enrolpulse/internal/analytics"
	"enrolpulse/internal/config"
	"enrolpulse/internal/dataset"
	"enrolpulse/internal/forecast"
	"enrolpulse/internal/infrastructure"
	"enrolpulse/pkg/contracts/domain"
)

// Channels a dashboard recomputation can be requested through
const (
	ChannelREST = "rest"
	ChannelLive = "live"
	ChannelCLI  = "cli"
)

// DatasetSource provides the loaded enrolment dataset
type DatasetSource interface {
	Get(ctx context.Context) (*dataset.Dataset, error)
}

// DashboardQuery is one dashboard selection. Empty fields take defaults:
// the first state, the first district of that state, the state level and
// the configured horizon.
type DashboardQuery struct {
	State    string `query:"state" json:"state,omitempty" validate:"regionname"`
	District string `query:"district" json:"district,omitempty" validate:"regionname"`
	Level    string `query:"level" json:"level,omitempty" validate:"omitempty,oneof=state district"`
	Horizon  int    `query:"horizon" json:"horizon,omitempty" validate:"gte=0"`
}

// DashboardService computes the dashboard views of a selection
type DashboardService struct {
	source         DatasetSource
	forecaster     *forecast.Forecaster
	defaultHorizon int
	metrics        *infrastructure.BusinessMetrics
	logger         *slog.Logger
}

// NewDashboardService creates a dashboard service. metrics may be nil.
func NewDashboardService(source DatasetSource, forecaster *forecast.Forecaster, defaultHorizon int, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if forecaster == nil {
		forecaster = forecast.New()
	}
	if defaultHorizon == 0 {
		defaultHorizon = config.DefaultForecastHorizon
	}

	logger.Info("DashboardService initialized",
		slog.Int("window", forecaster.Window),
		slog.Int("default_horizon", defaultHorizon))

	return &DashboardService{
		source:         source,
		forecaster:     forecaster,
		defaultHorizon: defaultHorizon,
		metrics:        metrics,
		logger:         logger.With(slog.String("component", "dashboard_service")),
	}
}

// DefaultHorizon returns the horizon used when a query leaves it unset
func (s *DashboardService) DefaultHorizon() int {
	return s.defaultHorizon
}

// Forecaster returns the forecaster bounds in use
func (s *DashboardService) Forecaster() *forecast.Forecaster {
	return s.forecaster
}

// States returns every state in ascending order
func (s *DashboardService) States(ctx context.Context) ([]string, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.States(ds.Records), nil
}

// Districts returns the districts of state in ascending order
func (s *DashboardService) Districts(ctx context.Context, state string) ([]string, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	districts := analytics.Districts(ds.Records, state)
	if len(districts) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrStateNotFound, state)
	}
	return districts, nil
}

// ResolveRegion applies the selection defaults and checks the region exists
func (s *DashboardService) ResolveRegion(ctx context.Context, state, district string) (domain.Region, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return domain.Region{}, err
	}
	return resolveRegion(ds, state, district)
}

// Overview returns the state-level totals and age group distribution
func (s *DashboardService) Overview(ctx context.Context, state string) (domain.StateOverview, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return domain.StateOverview{}, err
	}
	region, err := resolveRegion(ds, state, "")
	if err != nil {
		return domain.StateOverview{}, err
	}
	return overview(analytics.ByState(ds.Records, region.State), region.State), nil
}

// Breakdown returns the districts of state ranked by total enrolments
func (s *DashboardService) Breakdown(ctx context.Context, state string) ([]domain.DistrictAggregate, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	region, err := resolveRegion(ds, state, "")
	if err != nil {
		return nil, err
	}
	return analytics.GroupByDistrict(analytics.ByState(ds.Records, region.State)), nil
}

// DeepDive returns the district-level totals and age group distribution
func (s *DashboardService) DeepDive(ctx context.Context, state, district string) (domain.DistrictDeepDive, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return domain.DistrictDeepDive{}, err
	}
	region, err := resolveRegion(ds, state, district)
	if err != nil {
		return domain.DistrictDeepDive{}, err
	}
	return deepDive(analytics.Select(ds.Records, region)), nil
}

// Trend returns the daily series of a district in ascending date order
func (s *DashboardService) Trend(ctx context.Context, state, district string) ([]domain.DailyAggregate, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	region, err := resolveRegion(ds, state, district)
	if err != nil {
		return nil, err
	}
	return analytics.GroupByDate(analytics.Select(ds.Records, region).District), nil
}

// Forecast projects the daily totals of the state or district subset
func (s *DashboardService) Forecast(ctx context.Context, q DashboardQuery) (domain.Forecast, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return domain.Forecast{}, err
	}
	level, horizon, err := s.forecastParams(q)
	if err != nil {
		return domain.Forecast{}, err
	}
	region, err := resolveRegion(ds, q.State, q.District)
	if err != nil {
		return domain.Forecast{}, err
	}
	return s.project(ctx, analytics.Select(ds.Records, region), level, horizon)
}

// View recomputes the full dashboard of one selection. A forecast that
// cannot be produced from the available history leaves Forecast nil; an
// invalid horizon or level fails the whole view.
func (s *DashboardService) View(ctx context.Context, q DashboardQuery, channel string) (domain.DashboardView, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return domain.DashboardView{}, err
	}
	level, horizon, err := s.forecastParams(q)
	if err != nil {
		return domain.DashboardView{}, err
	}
	region, err := resolveRegion(ds, q.State, q.District)
	if err != nil {
		return domain.DashboardView{}, err
	}

	sel := analytics.Select(ds.Records, region)
	view := domain.DashboardView{
		Selection:   region,
		States:      analytics.States(ds.Records),
		Districts:   analytics.Districts(sel.State, region.State),
		Overview:    overview(sel.State, region.State),
		Breakdown:   analytics.GroupByDistrict(sel.State),
		DeepDive:    deepDive(sel),
		Trend:       analytics.GroupByDate(sel.District),
		GeneratedAt: time.Now().UTC(),
	}

	fc, err := s.project(ctx, sel, level, horizon)
	switch {
	case err == nil:
		view.Forecast = &fc
	case errors.Is(err, forecast.ErrInsufficientHistory), errors.Is(err, forecast.ErrEmptySeries):
		s.logger.WarnContext(ctx, "forecast omitted from dashboard",
			slog.String("state", region.State),
			slog.String("district", region.District),
			slog.String("reason", err.Error()))
	default:
		return domain.DashboardView{}, err
	}

	infrastructure.RecordDashboardRecomputation(ctx, s.metrics, channel)
	s.logger.DebugContext(ctx, "dashboard recomputed",
		slog.String("channel", channel),
		slog.String("state", region.State),
		slog.String("district", region.District),
		slog.String("level", string(level)),
		slog.Int("horizon", horizon))

	return view, nil
}

// load fetches the dataset, marking failures as ErrDatasetUnavailable
func (s *DashboardService) load(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.source.Get(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logDashboardError(ctx, "load_dataset", "dataset unavailable", err)
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return ds, nil
}

func (s *DashboardService) forecastParams(q DashboardQuery) (domain.ForecastLevel, int, error) {
	level := domain.ForecastLevel(strings.ToLower(strings.TrimSpace(q.Level)))
	if level == "" {
		level = domain.ForecastLevelState
	}
	if !level.Valid() {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidLevel, q.Level)
	}

	horizon := q.Horizon
	if horizon == 0 {
		horizon = s.defaultHorizon
	}
	if err := s.forecaster.ValidateHorizon(horizon); err != nil {
		return "", 0, err
	}
	return level, horizon, nil
}

func (s *DashboardService) project(ctx context.Context, sel analytics.Selection, level domain.ForecastLevel, horizon int) (domain.Forecast, error) {
	subset, label := sel.State, sel.Region.State
	if level == domain.ForecastLevelDistrict {
		subset, label = sel.District, sel.Region.District
	}

	fc, err := s.forecaster.Forecast(analytics.GroupByDate(subset), horizon)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("forecast for %s %q: %w", level, label, err)
	}
	fc.Level = level
	fc.Region = label

	infrastructure.RecordForecast(ctx, s.metrics, string(level), fc.Partial)
	return fc, nil
}

// resolveRegion falls back to the first state and the first district of
// that state, as the dashboard selectors do
func resolveRegion(ds *dataset.Dataset, state, district string) (domain.Region, error) {
	state = strings.TrimSpace(state)
	district = strings.TrimSpace(district)

	if state == "" {
		states := analytics.States(ds.Records)
		if len(states) == 0 {
			return domain.Region{}, fmt.Errorf("%w: dataset has no states", ErrStateNotFound)
		}
		state = states[0]
	}

	districts := analytics.Districts(ds.Records, state)
	if len(districts) == 0 {
		return domain.Region{}, fmt.Errorf("%w: %q", ErrStateNotFound, state)
	}

	if district == "" {
		return domain.Region{State: state, District: districts[0]}, nil
	}
	for _, d := range districts {
		if d == district {
			return domain.Region{State: state, District: district}, nil
		}
	}
	return domain.Region{}, fmt.Errorf("%w: %q in state %q", ErrDistrictNotFound, district, state)
}

func overview(records []domain.EnrolmentRecord, state string) domain.StateOverview {
	totals := analytics.Totals(records)
	return domain.StateOverview{
		State:        state,
		Totals:       totals,
		Distribution: analytics.AgeGroupDistribution(totals),
		Records:      len(records),
	}
}

func deepDive(sel analytics.Selection) domain.DistrictDeepDive {
	totals := analytics.Totals(sel.District)
	return domain.DistrictDeepDive{
		Region:       sel.Region,
		Totals:       totals,
		Distribution: analytics.AgeGroupDistribution(totals),
		Records:      len(sel.District),
	}
}

// logDashboardError logs through the context logger so trace IDs are attached,
// and marks the active span as failed
func logDashboardError(ctx context.Context, action, message string, err error) {
	logger := infrastructure.LoggerWithContext(ctx)
	infrastructure.RecordError(ctx, err)

	logger.LogAttrs(ctx, slog.LevelError, message,
		slog.String("component", "dashboard_service"),
		slog.String("action", action),
		slog.String("error", err.Error()),
	)
}
