package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatDate formats a calendar day as ISO 8601
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// formatCell renders one table value as CSV text
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return formatInt(int64(val))
	case int64:
		return formatInt(val)
	case float64:
		return formatFloat(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return formatDate(val)
	default:
		return fmt.Sprint(val)
	}
}
