package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dayFirstLayouts accept one or two digit days and months
var dayFirstLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006-1-2",
}

var timeSuffixLayouts = []string{
	"15:04:05",
	"15:04",
	"15:04:05.000",
}

// ParseDate parses a day-first date cell and returns midnight UTC of that
// calendar day. An optional time of day after a space is accepted and discarded.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if strings.Contains(value, "T") {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
			if t, err := time.Parse(layout, value); err == nil {
				return calendarDay(t), true
			}
		}
		return time.Time{}, false
	}

	datePart, timePart, hasTime := strings.Cut(value, " ")
	if hasTime && !isTimeOfDay(strings.TrimSpace(timePart)) {
		return time.Time{}, false
	}

	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			return calendarDay(t), true
		}
	}
	return time.Time{}, false
}

// parseSerialDate reads an Excel date serial, as found in raw XLSX cells
func parseSerialDate(value string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDay(t), true
}

func isTimeOfDay(value string) bool {
	for _, layout := range timeSuffixLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
