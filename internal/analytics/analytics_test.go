package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/shared/testutil"
	"enrolpulse/pkg/contracts/domain"
)

func TestSelect(t *testing.T) {
	records := testutil.SampleRecords()

	sel := Select(records, domain.Region{State: "Kerala", District: "Ernakulam"})
	assert.Len(t, sel.State, 4)
	assert.Len(t, sel.District, 2)

	// District subset is contained in the state subset
	for _, d := range sel.District {
		assert.Contains(t, sel.State, d)
		assert.Equal(t, "Kerala", d.State)
	}

	empty := Select(records, domain.Region{State: "Goa", District: "North Goa"})
	assert.Empty(t, empty.State)
	assert.Empty(t, empty.District)
	assert.NotNil(t, empty.State)
}

func TestByDistrictRequiresStateScope(t *testing.T) {
	records := []domain.EnrolmentRecord{
		testutil.Record("Bihar", "Aurangabad", testutil.Day(2025, time.March, 1), 1, 1),
		testutil.Record("Maharashtra", "Aurangabad", testutil.Day(2025, time.March, 1), 5, 5),
	}

	assert.Len(t, ByDistrict(records, "Aurangabad"), 2)
	sel := Select(records, domain.Region{State: "Bihar", District: "Aurangabad"})
	require.Len(t, sel.District, 1)
	assert.Equal(t, int64(1), sel.District[0].Age5To17)
}

func TestStatesAndDistricts(t *testing.T) {
	records := testutil.SampleRecords()

	assert.Equal(t, []string{"Bihar", "Kerala"}, States(records))
	assert.Equal(t, []string{"Ernakulam", "Kozhikode", "Thrissur"}, Districts(records, "Kerala"))
	assert.Equal(t, []string{"Gaya", "Patna"}, Districts(records, "Bihar"))
	assert.Empty(t, Districts(records, "Goa"))
	assert.Empty(t, States(nil))
}

func TestTotalsAndDistribution(t *testing.T) {
	kerala := ByState(testutil.SampleRecords(), "Kerala")

	totals := Totals(kerala)
	assert.Equal(t, domain.AgeGroupTotals{Age5To17: 41, Age18Plus: 19, Total: 60}, totals)

	assert.Equal(t, []domain.AgeGroupShare{
		{Group: "5–17", Count: 41},
		{Group: "18+", Count: 19},
	}, AgeGroupDistribution(totals))

	assert.Equal(t, domain.AgeGroupTotals{}, Totals(nil))
}

func TestGroupByDistrict(t *testing.T) {
	kerala := ByState(testutil.SampleRecords(), "Kerala")

	groups := GroupByDistrict(kerala)
	require.Len(t, groups, 3)
	assert.Equal(t, "Ernakulam", groups[0].District)
	assert.Equal(t, int64(45), groups[0].Total)
	assert.Equal(t, "Kozhikode", groups[1].District)
	assert.Equal(t, int64(10), groups[1].Total)
	assert.Equal(t, "Thrissur", groups[2].District)
	assert.Equal(t, int64(5), groups[2].Total)
}

func TestGroupByDistrictTiesByName(t *testing.T) {
	day := testutil.Day(2025, time.March, 1)
	records := []domain.EnrolmentRecord{
		testutil.Record("Goa", "South Goa", day, 3, 2),
		testutil.Record("Goa", "North Goa", day, 1, 4),
		testutil.Record("Goa", "Central", day, 9, 9),
	}

	groups := GroupByDistrict(records)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"Central", "North Goa", "South Goa"},
		[]string{groups[0].District, groups[1].District, groups[2].District})
}

func TestGroupByDate(t *testing.T) {
	kerala := ByState(testutil.SampleRecords(), "Kerala")

	// Reverse the input so ordering comes from the grouping
	reversed := make([]domain.EnrolmentRecord, len(kerala))
	for i, r := range kerala {
		reversed[len(kerala)-1-i] = r
	}

	days := GroupByDate(reversed)
	require.Len(t, days, 3)
	assert.Equal(t, testutil.Day(2025, time.March, 1), days[0].Date)
	assert.Equal(t, int64(25), days[0].Total)
	assert.Equal(t, testutil.Day(2025, time.March, 2), days[1].Date)
	assert.Equal(t, int64(30), days[1].Total)
	assert.Equal(t, testutil.Day(2025, time.March, 3), days[2].Date)
	assert.Equal(t, int64(5), days[2].Total)
}

func TestGroupingPreservesMass(t *testing.T) {
	for _, state := range States(testutil.SampleRecords()) {
		subset := ByState(testutil.SampleRecords(), state)
		want := Totals(subset)

		var byDistrict, byDate domain.AgeGroupTotals
		for _, g := range GroupByDistrict(subset) {
			byDistrict.Age5To17 += g.Age5To17
			byDistrict.Age18Plus += g.Age18Plus
			byDistrict.Total += g.Total
		}
		for _, d := range GroupByDate(subset) {
			byDate.Age5To17 += d.Age5To17
			byDate.Age18Plus += d.Age18Plus
			byDate.Total += d.Total
		}

		assert.Equal(t, want, byDistrict, state)
		assert.Equal(t, want, byDate, state)
		assert.Equal(t, want.Age5To17+want.Age18Plus, want.Total, state)
	}
}
