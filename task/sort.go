package task

import (
	"sort"

	"github.com/amonks/taskdash/internal/validation"
)

// SortOrder names an ordering for task lists.
type SortOrder string

const (
	// SortServer keeps the order the server returned.
	SortServer SortOrder = "server"
	// SortPriority puts high priority first, then earlier due dates.
	SortPriority SortOrder = "priority"
	// SortDue puts earlier due dates first and undated tasks last.
	SortDue SortOrder = "due"
)

// ValidSortOrders returns all sort orders.
func ValidSortOrders() []SortOrder {
	return []SortOrder{SortServer, SortPriority, SortDue}
}

// ParseSortOrder parses a sort order name. Empty input is SortServer.
func ParseSortOrder(value string) (SortOrder, error) {
	if value == "" {
		return SortServer, nil
	}
	for _, order := range ValidSortOrders() {
		if string(order) == value {
			return order, nil
		}
	}
	return "", validation.InvalidValueError(ErrInvalidSortOrder, value, ValidSortOrders())
}

// Sort returns a sorted copy of tasks. Ties keep server order.
func Sort(tasks []Task, order SortOrder) []Task {
	out := append([]Task(nil), tasks...)
	switch order {
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			if ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank(); ri != rj {
				return ri < rj
			}
			return dueBefore(out[i], out[j])
		})
	case SortDue:
		sort.SliceStable(out, func(i, j int) bool {
			switch {
			case dueBefore(out[i], out[j]):
				return true
			case dueBefore(out[j], out[i]):
				return false
			}
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	}
	return out
}

// dueBefore orders dated tasks by due time ahead of undated ones.
func dueBefore(a, b Task) bool {
	switch {
	case a.HasDue() && b.HasDue():
		return a.DueDate.Before(*b.DueDate)
	default:
		return a.HasDue() && !b.HasDue()
	}
}
