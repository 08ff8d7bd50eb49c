// Package forecast projects a daily total series forward with its trailing
// moving average.
//
// The projection is flat: every future day carries the mean of the last
// Window observations. There is no trend or seasonality model.
package forecast

import (
	"errors"
	"fmt"
	"sort"

	"enrolpulse/internal/config"
	"enrolpulse/pkg/contracts/domain"
)

// Sentinel errors
var (
	ErrInvalidHorizon      = errors.New("forecast horizon out of range")
	ErrEmptySeries         = errors.New("no observations to forecast from")
	ErrInsufficientHistory = errors.New("fewer observations than the moving average window")
)

// Forecaster computes trailing moving average projections
type Forecaster struct {
	Window     int
	MinHorizon int
	MaxHorizon int
	// RequireFullWindow rejects series shorter than Window instead of
	// averaging the observations that exist
	RequireFullWindow bool
}

// New returns a forecaster with the standard 7-day window and a 3–30 day horizon
func New() *Forecaster {
	return &Forecaster{
		Window:     config.DefaultForecastWindow,
		MinHorizon: config.MinForecastHorizon,
		MaxHorizon: config.MaxForecastHorizon,
	}
}

// FromConfig builds a forecaster from the forecast config section
func FromConfig(cfg config.ForecastConfig) *Forecaster {
	return &Forecaster{
		Window:            cfg.Window,
		MinHorizon:        cfg.MinHorizon,
		MaxHorizon:        cfg.MaxHorizon,
		RequireFullWindow: cfg.RequireFullWindow,
	}
}

// ValidateHorizon reports whether horizon lies within the configured bounds
func (f *Forecaster) ValidateHorizon(horizon int) error {
	if horizon < f.MinHorizon || horizon > f.MaxHorizon {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidHorizon, horizon, f.MinHorizon, f.MaxHorizon)
	}
	return nil
}

// Forecast projects series horizon days past its last date. The series does
// not need to be sorted. Level and Region of the result are left for the
// caller to fill.
func (f *Forecaster) Forecast(series []domain.DailyAggregate, horizon int) (domain.Forecast, error) {
	if err := f.ValidateHorizon(horizon); err != nil {
		return domain.Forecast{}, err
	}
	if len(series) == 0 {
		return domain.Forecast{}, ErrEmptySeries
	}

	window := f.Window
	if window < 1 {
		window = 1
	}

	sorted := make([]domain.DailyAggregate, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Date.Before(sorted[b].Date)
	})

	partial := len(sorted) < window
	if partial && f.RequireFullWindow {
		return domain.Forecast{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientHistory, len(sorted), window)
	}

	trailing := sorted
	if !partial {
		trailing = sorted[len(sorted)-window:]
	}

	var sum int64
	for _, d := range trailing {
		sum += d.Total
	}
	mean := float64(sum) / float64(len(trailing))

	last := sorted[len(sorted)-1].Date
	points := make([]domain.ForecastPoint, horizon)
	for i := range points {
		points[i] = domain.ForecastPoint{
			Date:  last.AddDate(0, 0, i+1),
			Value: mean,
		}
	}

	return domain.Forecast{
		Window:        window,
		Observations:  len(trailing),
		Partial:       partial,
		TrailingMean:  mean,
		DailyEstimate: int64(mean),
		LastObserved:  last,
		Points:        points,
	}, nil
}
