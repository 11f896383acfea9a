package dashtui

import (
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/amonks/taskdash/activity"
	"github.com/amonks/taskdash/internal/ui"
)

func renderActivity(entries []activity.Entry, now time.Time, width int) string {
	lines := []string{headerStyle.Render("Activity"), ""}
	if len(entries) == 0 {
		lines = append(lines, valueMuted.Render("No activity yet."))
		return strings.Join(lines, "\n")
	}
	textWidth := max(width-4, 10)
	for _, entry := range entries {
		lines = append(lines, valueMuted.Render(ui.FormatTimeAgo(entry.At, now)))
		wrapped := wordwrap.String(entry.Text, textWidth)
		lines = append(lines, indent.String(wrapped, 2))
	}
	return strings.Join(lines, "\n")
}
