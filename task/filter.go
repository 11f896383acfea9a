package task

import (
	"fmt"
	"time"
)

// Mode selects which tasks the dashboard shows.
type Mode string

const (
	ModeAll       Mode = "all"
	ModeCompleted Mode = "completed"
	ModeToday     Mode = "today"
	// ModeSearch shows the store as loaded by the last search.
	ModeSearch Mode = "search"
)

// FilterState is the active view selection. A non-empty SelectedDate
// (YYYY-MM-DD) overrides Mode.
type FilterState struct {
	Mode         Mode
	SelectedDate string
}

// Title returns the heading shown above the filtered list.
func (f FilterState) Title() string {
	if f.SelectedDate != "" {
		return fmt.Sprintf("(%s)", f.SelectedDate)
	}
	switch f.Mode {
	case ModeCompleted:
		return "Completed Tasks"
	case ModeToday:
		return "Today Tasks"
	case ModeSearch:
		return "Search Tasks"
	default:
		return "All Tasks"
	}
}

// Filter returns the subset of tasks visible under state, preserving order.
// today's location is the viewer's zone for calendar-day comparisons.
//
// Precedence: selected date, then Completed, then Today, otherwise all
// tasks. Search results are already what the store holds.
func Filter(tasks []Task, state FilterState, today time.Time) []Task {
	loc := today.Location()
	var keep func(Task) bool
	switch {
	case state.SelectedDate != "":
		keep = func(t Task) bool { return t.DueKey(loc) == state.SelectedDate }
	case state.Mode == ModeCompleted:
		keep = func(t Task) bool { return t.Status == StatusCompleted }
	case state.Mode == ModeToday:
		todayKey := DayKey(today, loc)
		keep = func(t Task) bool { return t.DueKey(loc) == todayKey }
	default:
		out := make([]Task, len(tasks))
		copy(out, tasks)
		return out
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
