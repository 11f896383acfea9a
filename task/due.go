package task

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day format used for day keys and due date input.
const DayLayout = "2006-01-02"

// WireLayout is the offset-less timestamp format sent to the backend.
const WireLayout = "2006-01-02T15:04:05"

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DayLayout,
}

// ParseTimestamp parses a backend timestamp. RFC 3339 values keep their
// offset; values without one are interpreted in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", ErrInvalidDueDate, value)
}

// DayKey returns the YYYY-MM-DD calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD calendar day as midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(day), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDueDate, day)
	}
	return t, nil
}

// EndOfDay returns 23:59:59 on the given YYYY-MM-DD day in loc.
func EndOfDay(day string, loc *time.Location) (time.Time, error) {
	start, err := ParseDay(day, loc)
	if err != nil {
		return time.Time{}, err
	}
	year, month, d := start.Date()
	return time.Date(year, month, d, 23, 59, 59, 0, loc), nil
}

// FormatWire formats t for the backend in its own location without an offset.
func FormatWire(t time.Time) string {
	return t.Format(WireLayout)
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
