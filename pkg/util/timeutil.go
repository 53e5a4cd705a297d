package util

import (
	"fmt"
	"time"
)

// ISODate is the calendar date layout used across the API.
const ISODate = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseISODate parses a YYYY-MM-DD date in UTC.
func ParseISODate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(ISODate, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return t, nil
}

// DateRange returns n consecutive YYYY-MM-DD labels starting at start.
func DateRange(start time.Time, n int) []string {
	if n <= 0 {
		return []string{}
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	labels := make([]string, n)
	for i := range labels {
		labels[i] = day.AddDate(0, 0, i).Format(ISODate)
	}
	return labels
}
