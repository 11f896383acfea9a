package ui

import (
	"fmt"
	"time"

	"github.com/amonks/taskdash/task"
)

// FormatTimeAgo returns a compact age string like "2m ago". A zero then
// formats as "-".
func FormatTimeAgo(then time.Time, now time.Time) string {
	if then.IsZero() {
		return "-"
	}
	return FormatDurationShort(now.Sub(then)) + " ago"
}

// FormatDurationShort formats a duration using short units (s/m/h/d).
func FormatDurationShort(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	duration = duration.Truncate(time.Second)
	seconds := int64(duration.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd", days)
}

// FormatDue describes a due date relative to now's calendar day in loc:
// "today", "tomorrow", "yesterday", "in 3d", or "2d overdue". Tasks without
// a due date format as "-".
func FormatDue(due *time.Time, now time.Time, loc *time.Location) string {
	if due == nil {
		return "-"
	}
	dueDay := task.StartOfDay(due.In(loc))
	today := task.StartOfDay(now.In(loc))
	days := calendarDays(today, dueDay)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 1:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd overdue", -days)
	}
}

// calendarDays counts midnights between two start-of-day times. Hours are
// rounded so DST transitions do not shift the count.
func calendarDays(from, to time.Time) int {
	hours := to.Sub(from).Hours()
	if hours >= 0 {
		return int((hours + 12) / 24)
	}
	return -int((-hours + 12) / 24)
}
