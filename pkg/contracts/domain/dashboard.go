package domain

import (
	"time"
)

// ForecastLevel selects which subset feeds the forecast series
type ForecastLevel string

const (
	ForecastLevelState    ForecastLevel = "state"
	ForecastLevelDistrict ForecastLevel = "district"
)

// Valid reports whether the level is one of the known levels
func (l ForecastLevel) Valid() bool {
	return l == ForecastLevelState || l == ForecastLevelDistrict
}

// ForecastPoint is one projected day
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Forecast is a flat trailing-mean projection of a daily total series
type Forecast struct {
	Level         ForecastLevel   `json:"level"`
	Region        string          `json:"region"`
	Window        int             `json:"window"`
	Observations  int             `json:"observations"`
	Partial       bool            `json:"partial"`
	TrailingMean  float64         `json:"trailing_mean"`
	DailyEstimate int64           `json:"daily_estimate"`
	LastObserved  time.Time       `json:"last_observed"`
	Points        []ForecastPoint `json:"points"`
}

// StateOverview is the state-level KPI block
type StateOverview struct {
	State        string          `json:"state"`
	Totals       AgeGroupTotals  `json:"totals"`
	Distribution []AgeGroupShare `json:"distribution"`
	Records      int             `json:"records"`
}

// DistrictDeepDive is the district-level KPI block
type DistrictDeepDive struct {
	Region       Region          `json:"region"`
	Totals       AgeGroupTotals  `json:"totals"`
	Distribution []AgeGroupShare `json:"distribution"`
	Records      int             `json:"records"`
}

// DashboardView is the complete set of aggregates for one selection
type DashboardView struct {
	Selection   Region              `json:"selection"`
	States      []string            `json:"states"`
	Districts   []string            `json:"districts"`
	Overview    StateOverview       `json:"overview"`
	Breakdown   []DistrictAggregate `json:"district_breakdown"`
	DeepDive    DistrictDeepDive    `json:"district_deep_dive"`
	Trend       []DailyAggregate    `json:"trend"`
	Forecast    *Forecast           `json:"forecast,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// DatasetInfo describes the cached dataset
type DatasetInfo struct {
	Source    string    `json:"source"`
	Records   int       `json:"records"`
	Dropped   int       `json:"dropped"`
	States    int       `json:"states"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
	LoadedAt  time.Time `json:"loaded_at"`
}
