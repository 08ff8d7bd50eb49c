package domain

import (
	"time"
)

// Age group labels used by chart series
const (
	AgeGroup5To17  = "5–17"
	AgeGroup18Plus = "18+"
)

// EnrolmentRecord represents one row of the demographic enrolment dataset
type EnrolmentRecord struct {
	State     string    `json:"state"`
	District  string    `json:"district"`
	Date      time.Time `json:"date"`
	Age5To17  int64     `json:"age_5_17"`
	Age18Plus int64     `json:"age_18_plus"`
}

// Total returns the combined count of both age groups
func (r EnrolmentRecord) Total() int64 {
	return r.Age5To17 + r.Age18Plus
}

// Region identifies a geographic filter scope
type Region struct {
	State    string `json:"state" validate:"required"`
	District string `json:"district,omitempty"`
}

// AgeGroupTotals holds summed counts for both age groups plus their total
type AgeGroupTotals struct {
	Age5To17  int64 `json:"age_5_17"`
	Age18Plus int64 `json:"age_18_plus"`
	Total     int64 `json:"total"`
}

// Add accumulates a record into the totals
func (t *AgeGroupTotals) Add(r EnrolmentRecord) {
	t.Age5To17 += r.Age5To17
	t.Age18Plus += r.Age18Plus
	t.Total = t.Age5To17 + t.Age18Plus
}

// AgeGroupShare is a single bar or pie slice of the age group distribution
type AgeGroupShare struct {
	Group string `json:"age_group"`
	Count int64  `json:"count"`
}

// DistrictAggregate holds totals for one district of a state
type DistrictAggregate struct {
	District string `json:"district"`
	AgeGroupTotals
}

// DailyAggregate holds totals for one calendar day
type DailyAggregate struct {
	Date time.Time `json:"date"`
	AgeGroupTotals
}
