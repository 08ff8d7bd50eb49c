// Package analytics narrows enrolment records to a region and aggregates
// them by district and by date.
package analytics

import (
	"sort"

	"enrolpulse/pkg/contracts/domain"
)

// Selection holds the nested subsets of one region: District is always a
// subset of State.
type Selection struct {
	Region   domain.Region
	State    []domain.EnrolmentRecord
	District []domain.EnrolmentRecord
}

// ByState returns the records of a state, preserving input order
func ByState(records []domain.EnrolmentRecord, state string) []domain.EnrolmentRecord {
	return filter(records, func(r domain.EnrolmentRecord) bool { return r.State == state })
}

// ByDistrict returns the records of a district. It is applied to a state
// subset; district names are not unique across states.
func ByDistrict(records []domain.EnrolmentRecord, district string) []domain.EnrolmentRecord {
	return filter(records, func(r domain.EnrolmentRecord) bool { return r.District == district })
}

// Select narrows records to the state and then the district of region
func Select(records []domain.EnrolmentRecord, region domain.Region) Selection {
	state := ByState(records, region.State)
	return Selection{
		Region:   region,
		State:    state,
		District: ByDistrict(state, region.District),
	}
}

// States returns the distinct states in ascending order
func States(records []domain.EnrolmentRecord) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		set[r.State] = struct{}{}
	}
	return sortedKeys(set)
}

// Districts returns the distinct districts of state in ascending order
func Districts(records []domain.EnrolmentRecord, state string) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		if r.State == state {
			set[r.District] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func filter(records []domain.EnrolmentRecord, keep func(domain.EnrolmentRecord) bool) []domain.EnrolmentRecord {
	out := make([]domain.EnrolmentRecord, 0)
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
