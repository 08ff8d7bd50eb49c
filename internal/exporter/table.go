package exporter

import (
	"fmt"
	"strings"

	"enrolpulse/pkg/contracts/domain"
)

// Table is a named grid of values ready to encode. Cells hold string,
// int64, float64, bool or time.Time values. Title labels XLSX sheets and
// the workbook; CSV output carries the grid only.
type Table struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]interface{}
}

// DistrictTable shapes a district ranking of state
func DistrictTable(state string, groups []domain.DistrictAggregate) Table {
	rows := make([][]interface{}, len(groups))
	for i, g := range groups {
		rows[i] = []interface{}{i + 1, g.District, g.Age5To17, g.Age18Plus, g.Total}
	}
	return Table{
		Name:    "Districts",
		Title:   fmt.Sprintf("District-wise enrolment activity: %s", state),
		Headers: []string{"rank", "district", "age_5_17", "age_18_plus", "total"},
		Rows:    rows,
	}
}

// TrendTable shapes the daily series of a region
func TrendTable(region domain.Region, days []domain.DailyAggregate) Table {
	rows := make([][]interface{}, len(days))
	for i, d := range days {
		rows[i] = []interface{}{d.Date, d.Age5To17, d.Age18Plus, d.Total}
	}
	return Table{
		Name:    "Trend",
		Title:   fmt.Sprintf("Daily enrolment activity: %s", regionLabel(region)),
		Headers: []string{"date", "age_5_17", "age_18_plus", "total"},
		Rows:    rows,
	}
}

// ForecastTable shapes the projected points of a forecast
func ForecastTable(fc domain.Forecast) Table {
	rows := make([][]interface{}, len(fc.Points))
	for i, p := range fc.Points {
		rows[i] = []interface{}{p.Date, p.Value}
	}
	return Table{
		Name:    "Forecast",
		Title:   fmt.Sprintf("%d-day moving average forecast (%s %s)", fc.Window, fc.Level, fc.Region),
		Headers: []string{"date", "predicted_activity"},
		Rows:    rows,
	}
}

// Filename builds a download name such as "districts_kerala.csv"
func Filename(kind string, format Format, parts ...string) string {
	name := []string{kind}
	for _, p := range parts {
		if slug := slugify(p); slug != "" {
			name = append(name, slug)
		}
	}
	return strings.Join(name, "_") + format.Extension()
}

func regionLabel(region domain.Region) string {
	if region.District == "" {
		return region.State
	}
	return region.District + ", " + region.State
}

func slugify(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
