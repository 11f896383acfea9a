package dashtui

import (
	"fmt"
	"strings"

	"github.com/amonks/taskdash/task"
)

const barWidth = 30

// renderStats draws one row per metric: label, value out of total, and a
// percent bar.
func renderStats(stats task.Stats) string {
	lines := []string{headerStyle.Render("Statistics"), ""}
	for _, mv := range stats.Values() {
		value := fmt.Sprintf("%d / %d", mv.Value, stats.Total)
		if mv.Metric == task.MetricCompletionRate {
			value = fmt.Sprintf("%d%%", mv.Value)
		}
		lines = append(lines, fmt.Sprintf("%-16s %-9s %s %3d%%",
			mv.Metric.Label(), value, renderBar(mv.Percent, barWidth), mv.Percent))
	}
	return strings.Join(lines, "\n")
}

func renderBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return barFilledStyle.Render(strings.Repeat("#", filled)) +
		barEmptyStyle.Render(strings.Repeat(".", width-filled))
}
