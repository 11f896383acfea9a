package task

import (
	"math"
	"time"
)

// Stats summarizes a task collection.
type Stats struct {
	Total      int
	Completed  int
	Pending    int
	InProgress int
	// Overdue counts tasks due before now that are not completed.
	Overdue int
	// Upcoming counts tasks due after now, completed or not.
	Upcoming int
	// Today counts tasks due on the current local day.
	Today int
	// CompletionRate is the rounded percentage of completed tasks.
	CompletionRate int
}

// Aggregate computes statistics over tasks. now's location is the viewer's
// zone for the Today count.
func Aggregate(tasks []Task, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}
	todayKey := DayKey(now, now.Location())
	for _, t := range tasks {
		switch t.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusPending:
			stats.Pending++
		case StatusInProgress:
			stats.InProgress++
		}
		if t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		if due.Before(now) && t.Status != StatusCompleted {
			stats.Overdue++
		}
		if due.After(now) {
			stats.Upcoming++
		}
		if DayKey(due, now.Location()) == todayKey {
			stats.Today++
		}
	}
	stats.CompletionRate = stats.Percent(stats.Completed)
	return stats
}

// Percent returns n as a rounded percentage of Total, or 0 for an empty
// collection.
func (s Stats) Percent(n int) int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(s.Total) * 100))
}

// Metric names one dashboard statistic.
type Metric int

const (
	MetricCompleted Metric = iota
	MetricInProgress
	MetricPending
	MetricOverdue
	MetricUpcoming
	MetricCompletionRate
)

// Metrics lists the dashboard statistics in display order.
func Metrics() []Metric {
	return []Metric{MetricCompleted, MetricInProgress, MetricPending, MetricOverdue, MetricUpcoming, MetricCompletionRate}
}

var metricLabels = map[Metric]string{
	MetricCompleted:      "Completed",
	MetricInProgress:     "In Progress",
	MetricPending:        "Pending",
	MetricOverdue:        "Overdue",
	MetricUpcoming:       "Upcoming",
	MetricCompletionRate: "Completion Rate",
}

// Label returns the display name of the metric.
func (m Metric) Label() string {
	if label, ok := metricLabels[m]; ok {
		return label
	}
	return "Unknown"
}

// MetricValue is one statistic ready for display.
type MetricValue struct {
	Metric  Metric
	Value   int
	Percent int
}

// Value returns the count for a metric together with its share of Total.
// For MetricCompletionRate both fields hold the rate.
func (s Stats) Value(m Metric) MetricValue {
	var value int
	switch m {
	case MetricCompleted:
		value = s.Completed
	case MetricInProgress:
		value = s.InProgress
	case MetricPending:
		value = s.Pending
	case MetricOverdue:
		value = s.Overdue
	case MetricUpcoming:
		value = s.Upcoming
	case MetricCompletionRate:
		return MetricValue{Metric: m, Value: s.CompletionRate, Percent: s.CompletionRate}
	}
	return MetricValue{Metric: m, Value: value, Percent: s.Percent(value)}
}

// Values returns every metric in display order.
func (s Stats) Values() []MetricValue {
	metrics := Metrics()
	out := make([]MetricValue, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, s.Value(m))
	}
	return out
}
