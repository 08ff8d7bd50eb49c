package analytics

import (
	"sort"

	"enrolpulse/pkg/contracts/domain"
)

// Totals sums both age groups over records
func Totals(records []domain.EnrolmentRecord) domain.AgeGroupTotals {
	var t domain.AgeGroupTotals
	for _, r := range records {
		t.Add(r)
	}
	return t
}

// AgeGroupDistribution turns totals into the two chart slices, 5–17 first
func AgeGroupDistribution(totals domain.AgeGroupTotals) []domain.AgeGroupShare {
	return []domain.AgeGroupShare{
		{Group: domain.AgeGroup5To17, Count: totals.Age5To17},
		{Group: domain.AgeGroup18Plus, Count: totals.Age18Plus},
	}
}

// GroupByDistrict sums records per district, ordered by total descending
// and then by district name
func GroupByDistrict(records []domain.EnrolmentRecord) []domain.DistrictAggregate {
	index := make(map[string]int)
	groups := make([]domain.DistrictAggregate, 0)

	for _, r := range records {
		i, ok := index[r.District]
		if !ok {
			i = len(groups)
			index[r.District] = i
			groups = append(groups, domain.DistrictAggregate{District: r.District})
		}
		groups[i].Add(r)
	}

	sort.Slice(groups, func(a, b int) bool {
		if groups[a].Total != groups[b].Total {
			return groups[a].Total > groups[b].Total
		}
		return groups[a].District < groups[b].District
	})
	return groups
}

// GroupByDate sums records per calendar day in ascending date order
func GroupByDate(records []domain.EnrolmentRecord) []domain.DailyAggregate {
	index := make(map[int64]int)
	days := make([]domain.DailyAggregate, 0)

	for _, r := range records {
		key := r.Date.Unix()
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, domain.DailyAggregate{Date: r.Date})
		}
		days[i].Add(r)
	}

	sort.Slice(days, func(a, b int) bool {
		return days[a].Date.Before(days[b].Date)
	})
	return days
}
