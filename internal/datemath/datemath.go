// Package datemath turns relative day names into calendar days.
package datemath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/taskdash/task"
)

var (
	inPattern     = regexp.MustCompile(`^in (\d+) (day|days|week|weeks|month|months)$`)
	offsetPattern = regexp.MustCompile(`^([+-]\d+)d?$`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Resolve converts a day expression to a YYYY-MM-DD key in loc, relative to
// now. Accepted forms are a literal YYYY-MM-DD day, today, tomorrow,
// yesterday, "in N days|weeks|months", "next <weekday>", and +N/-N day
// offsets. An empty expression resolves to the empty string.
func Resolve(expr string, now time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	expr = strings.ToLower(strings.Join(strings.Fields(expr), " "))
	if expr == "" {
		return "", nil
	}

	day, err := resolve(expr, task.StartOfDay(now.In(loc)))
	if err != nil {
		return "", err
	}
	return task.DayKey(day, loc), nil
}

func resolve(expr string, base time.Time) (time.Time, error) {
	switch expr {
	case "today":
		return base, nil
	case "tomorrow":
		return base.AddDate(0, 0, 1), nil
	case "yesterday":
		return base.AddDate(0, 0, -1), nil
	}

	if matches := inPattern.FindStringSubmatch(expr); matches != nil {
		amount, err := strconv.Atoi(matches[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", task.ErrInvalidDueDate, expr)
		}
		switch {
		case strings.HasPrefix(matches[2], "day"):
			return base.AddDate(0, 0, amount), nil
		case strings.HasPrefix(matches[2], "week"):
			return base.AddDate(0, 0, amount*7), nil
		default:
			return base.AddDate(0, amount, 0), nil
		}
	}

	if matches := offsetPattern.FindStringSubmatch(expr); matches != nil {
		amount, err := strconv.Atoi(matches[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", task.ErrInvalidDueDate, expr)
		}
		return base.AddDate(0, 0, amount), nil
	}

	if name, ok := strings.CutPrefix(expr, "next "); ok {
		target, ok := weekdays[name]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: unknown weekday %q", task.ErrInvalidDueDate, name)
		}
		until := int(target - base.Weekday())
		if until <= 0 {
			until += 7
		}
		return base.AddDate(0, 0, until), nil
	}

	day, err := task.ParseDay(expr, base.Location())
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}
