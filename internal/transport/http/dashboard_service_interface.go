package http

import (
	"context"

	"enrolpulse/internal/forecast"
	"enrolpulse/internal/services"
	"enrolpulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers depend on
type DashboardServiceInterface interface {
	States(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, state string) ([]string, error)
	ResolveRegion(ctx context.Context, state, district string) (domain.Region, error)
	Overview(ctx context.Context, state string) (domain.StateOverview, error)
	Breakdown(ctx context.Context, state string) ([]domain.DistrictAggregate, error)
	DeepDive(ctx context.Context, state, district string) (domain.DistrictDeepDive, error)
	Trend(ctx context.Context, state, district string) ([]domain.DailyAggregate, error)
	Forecast(ctx context.Context, q services.DashboardQuery) (domain.Forecast, error)
	View(ctx context.Context, q services.DashboardQuery, channel string) (domain.DashboardView, error)
	DefaultHorizon() int
	Forecaster() *forecast.Forecaster
}
