package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/analytics"
	"enrolpulse/internal/config"
	"enrolpulse/internal/shared/testutil"
	"enrolpulse/pkg/contracts/domain"
)

func series(start time.Time, totals ...int64) []domain.DailyAggregate {
	return analytics.GroupByDate(testutil.DailySeries("Kerala", "Ernakulam", start, totals...))
}

func TestForecastTrailingMean(t *testing.T) {
	start := testutil.Day(2025, time.March, 1)
	f := New()

	got, err := f.Forecast(series(start, 10, 20, 30, 40, 50, 60, 70), 3)
	require.NoError(t, err)

	assert.Equal(t, 40.0, got.TrailingMean)
	assert.Equal(t, int64(40), got.DailyEstimate)
	assert.Equal(t, 7, got.Window)
	assert.Equal(t, 7, got.Observations)
	assert.False(t, got.Partial)
	assert.Equal(t, testutil.Day(2025, time.March, 7), got.LastObserved)
	assert.Equal(t, []domain.ForecastPoint{
		{Date: testutil.Day(2025, time.March, 8), Value: 40},
		{Date: testutil.Day(2025, time.March, 9), Value: 40},
		{Date: testutil.Day(2025, time.March, 10), Value: 40},
	}, got.Points)
}

func TestForecastUsesOnlyTrailingWindow(t *testing.T) {
	start := testutil.Day(2025, time.January, 1)
	// Ten days; only the last seven (4..10 → 40..100) count
	got, err := New().Forecast(series(start, 1000, 1000, 1000, 40, 50, 60, 70, 80, 90, 100), 5)
	require.NoError(t, err)

	assert.Equal(t, 70.0, got.TrailingMean)
	assert.Equal(t, 7, got.Observations)
}

func TestForecastPointsAreConsecutive(t *testing.T) {
	start := testutil.Day(2024, time.December, 20)
	s := series(start, 5, 5, 5, 5, 5, 5, 5, 5)

	for horizon := 3; horizon <= 30; horizon++ {
		got, err := New().Forecast(s, horizon)
		require.NoError(t, err)
		require.Len(t, got.Points, horizon)

		prev := got.LastObserved
		for _, p := range got.Points {
			assert.True(t, p.Date.After(got.LastObserved))
			assert.Equal(t, prev.AddDate(0, 0, 1), p.Date)
			prev = p.Date
		}
	}
}

func TestForecastTruncatesDailyEstimate(t *testing.T) {
	got, err := New().Forecast(series(testutil.Day(2025, time.March, 1), 1, 1, 1, 1, 1, 1, 2), 3)
	require.NoError(t, err)

	assert.InDelta(t, 8.0/7.0, got.TrailingMean, 1e-9)
	assert.Equal(t, int64(1), got.DailyEstimate)
}

func TestForecastSortsInput(t *testing.T) {
	start := testutil.Day(2025, time.March, 1)
	s := series(start, 10, 20, 30)
	shuffled := []domain.DailyAggregate{s[2], s[0], s[1]}

	got, err := New().Forecast(shuffled, 3)
	require.NoError(t, err)
	assert.Equal(t, testutil.Day(2025, time.March, 3), got.LastObserved)
	assert.Equal(t, testutil.Day(2025, time.March, 4), got.Points[0].Date)
	// the caller's slice is left untouched
	assert.Equal(t, s[2], shuffled[0])
}

func TestForecastShortSeries(t *testing.T) {
	s := series(testutil.Day(2025, time.March, 1), 10, 20, 60)

	got, err := New().Forecast(s, 3)
	require.NoError(t, err)
	assert.True(t, got.Partial)
	assert.Equal(t, 3, got.Observations)
	assert.Equal(t, 30.0, got.TrailingMean)

	strict := New()
	strict.RequireFullWindow = true
	_, err = strict.Forecast(s, 3)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestForecastErrors(t *testing.T) {
	s := series(testutil.Day(2025, time.March, 1), 1, 2, 3)

	tests := []struct {
		name    string
		series  []domain.DailyAggregate
		horizon int
		wantErr error
	}{
		{name: "horizon below minimum", series: s, horizon: 2, wantErr: ErrInvalidHorizon},
		{name: "horizon above maximum", series: s, horizon: 31, wantErr: ErrInvalidHorizon},
		{name: "empty series", series: nil, horizon: 7, wantErr: ErrEmptySeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Forecast(tt.series, tt.horizon)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().Forecast
	cfg.Window = 3
	cfg.MaxHorizon = 10
	cfg.RequireFullWindow = true

	f := FromConfig(cfg)
	assert.Equal(t, 3, f.Window)
	assert.Equal(t, 3, f.MinHorizon)
	assert.Equal(t, 10, f.MaxHorizon)
	assert.True(t, f.RequireFullWindow)

	assert.NoError(t, f.ValidateHorizon(10))
	assert.ErrorIs(t, f.ValidateHorizon(11), ErrInvalidHorizon)

	got, err := f.Forecast(series(testutil.Day(2025, time.March, 1), 1, 2, 3, 4, 5), 3)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.TrailingMean)
}
