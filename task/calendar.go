package task

import (
	"strconv"
	"time"
)

// Day is one cell of a calendar month.
type Day struct {
	Date  time.Time
	Key   string
	Tasks []Task
}

// Month is a calendar month laid out in Sunday-first weeks.
type Month struct {
	Year  int
	Month time.Month
	// Leading is the number of blank cells before the first day.
	Leading int
	Days    []Day
}

// Title returns the month heading, e.g. "March 2025".
func (m Month) Title() string {
	return m.Month.String() + " " + strconv.Itoa(m.Year)
}

// Weeks splits the month into rows of seven cells. Blank cells are nil.
func (m Month) Weeks() [][]*Day {
	cells := make([]*Day, 0, m.Leading+len(m.Days)+6)
	for i := 0; i < m.Leading; i++ {
		cells = append(cells, nil)
	}
	for i := range m.Days {
		cells = append(cells, &m.Days[i])
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}
	weeks := make([][]*Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Find returns the day with the given key.
func (m Month) Find(key string) (Day, bool) {
	for _, d := range m.Days {
		if d.Key == key {
			return d, true
		}
	}
	return Day{}, false
}

// Shift returns the first day of the month offset by delta months.
func (m Month) Shift(delta int) time.Time {
	loc := time.Local
	if len(m.Days) > 0 {
		loc = m.Days[0].Date.Location()
	}
	return time.Date(m.Year, m.Month+time.Month(delta), 1, 0, 0, 0, 0, loc)
}

// TasksByDay groups tasks with a due date by their local day key,
// preserving order within a day.
func TasksByDay(tasks []Task, loc *time.Location) map[string][]Task {
	byDay := make(map[string][]Task)
	for _, t := range tasks {
		key := t.DueKey(loc)
		if key == "" {
			continue
		}
		byDay[key] = append(byDay[key], t)
	}
	return byDay
}

// BuildMonth lays out the given month in loc and places each task on the
// local day of its due date.
func BuildMonth(tasks []Task, year int, month time.Month, loc *time.Location) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	byDay := TasksByDay(tasks, loc)
	result := Month{
		Year:    first.Year(),
		Month:   first.Month(),
		Leading: int(first.Weekday()),
	}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		key := d.Format(DayLayout)
		result.Days = append(result.Days, Day{Date: d, Key: key, Tasks: byDay[key]})
	}
	return result
}
