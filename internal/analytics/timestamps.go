package analytics

import (
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.DateTime,
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp reads the timestamp formats found in the olist exports.
// Timestamps are timezone-naive: an offset is dropped and the wall clock is
// kept as UTC, so days match the holiday calendar.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// TruncateDay drops the time of day, keeping the wall-clock calendar date at
// UTC midnight.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EpochMillis renders a day the way the daily series is serialized.
func EpochMillis(day time.Time) int64 {
	return TruncateDay(day).UnixMilli()
}

// DaysBetween returns the fractional number of days from start to end.
func DaysBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// CalendarDaysBetween counts whole calendar days from start to end, ignoring
// the time of day.
func CalendarDaysBetween(start, end time.Time) int64 {
	return int64(TruncateDay(end).Sub(TruncateDay(start)).Hours() / 24)
}

// MonthLabel is the short english month name used as the pivot row label.
func MonthLabel(m time.Month) string {
	return m.String()[:3]
}
