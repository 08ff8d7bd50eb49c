package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"enrolpulse/pkg/contracts/domain"
)

// SampleCSV is a small enrolment extract. The last row has an unparseable
// date and is dropped on load, leaving the records of SampleRecords.
const SampleCSV = `state,district,date,demo_age_5_17,demo_age_17_
Kerala,Ernakulam,01-03-2025,10,5
Kerala,Ernakulam,02-03-2025,20,10
Kerala,Kozhikode,01-03-2025,7,3
Kerala,Thrissur,03-03-2025,4,1
Bihar,Patna,01-03-2025,100,50
Bihar,Gaya,02-03-2025,30,20
Bihar,Gaya,not-a-date,99,99
`

// Day returns midnight UTC of the given calendar day
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Record builds a single enrolment record
func Record(state, district string, date time.Time, age5To17, age18Plus int64) domain.EnrolmentRecord {
	return domain.EnrolmentRecord{
		State:     state,
		District:  district,
		Date:      date,
		Age5To17:  age5To17,
		Age18Plus: age18Plus,
	}
}

// SampleRecords returns the records SampleCSV loads to, in file order
func SampleRecords() []domain.EnrolmentRecord {
	return []domain.EnrolmentRecord{
		Record("Kerala", "Ernakulam", Day(2025, time.March, 1), 10, 5),
		Record("Kerala", "Ernakulam", Day(2025, time.March, 2), 20, 10),
		Record("Kerala", "Kozhikode", Day(2025, time.March, 1), 7, 3),
		Record("Kerala", "Thrissur", Day(2025, time.March, 3), 4, 1),
		Record("Bihar", "Patna", Day(2025, time.March, 1), 100, 50),
		Record("Bihar", "Gaya", Day(2025, time.March, 2), 30, 20),
	}
}

// DailySeries builds one record per consecutive day starting at start,
// with each value as the 5-17 count and no 18+ enrolments
func DailySeries(state, district string, start time.Time, values ...int64) []domain.EnrolmentRecord {
	records := make([]domain.EnrolmentRecord, len(values))
	for i, v := range values {
		records[i] = Record(state, district, start.AddDate(0, 0, i), v, 0)
	}
	return records
}

// WriteFile writes content to name inside dir and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
