package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amonks/taskdash/internal/markdown"
	"github.com/amonks/taskdash/internal/ui"
	"github.com/amonks/taskdash/task"
)

const taskDetailLineWidth = 80

// dueDisplayLayout matches the dashboard's task card.
const dueDisplayLayout = "02 Jan 2006"

func encodeJSONToStdout(value any) error {
	return encodeJSON(os.Stdout, value)
}

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// printTaskList prints tasks as a table, or as JSON when asJSON is set.
func printTaskList(tasks []task.Task, asJSON bool, now time.Time, loc *time.Location) error {
	if asJSON {
		if tasks == nil {
			tasks = []task.Task{}
		}
		return encodeJSONToStdout(tasks)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	fmt.Print(formatTaskTable(tasks, now, loc))
	return nil
}

func formatTaskTable(tasks []task.Task, now time.Time, loc *time.Location) string {
	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "PRIORITY", "DUE", "TITLE"}, len(tasks))
	for _, t := range tasks {
		builder.AddRow(
			t.ID.String(),
			ui.Status(t.Status),
			ui.Priority(t.Priority),
			formatTaskDue(t, now, loc),
			ui.TruncateTableCell(t.Title),
		)
	}
	return builder.String()
}

// formatTaskDue describes the due date relative to now, highlighting open
// tasks that are past due.
func formatTaskDue(t task.Task, now time.Time, loc *time.Location) string {
	due := ui.FormatDue(t.DueDate, now, loc)
	if isOverdue(t, now) {
		return ui.Overdue(due)
	}
	return due
}

func isOverdue(t task.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != task.StatusCompleted
}

// formatTaskDetail renders every field of a task.
func formatTaskDetail(t task.Task, now time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:       %s\n", t.ID)
	fmt.Fprintf(&b, "Title:    %s\n", ui.Bold(t.Title))
	fmt.Fprintf(&b, "Status:   %s\n", ui.Status(t.Status))
	fmt.Fprintf(&b, "Priority: %s\n", ui.Priority(t.Priority))
	if t.DueDate != nil {
		fmt.Fprintf(&b, "Due:      %s (%s)\n", t.DueDate.In(loc).Format(dueDisplayLayout), formatTaskDue(t, now, loc))
	} else {
		fmt.Fprintf(&b, "Due:      -\n")
	}
	if t.CreatedAt != nil {
		fmt.Fprintf(&b, "Created:  %s\n", t.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	}
	if desc := markdown.Render(taskDetailLineWidth, 2, t.Description); desc != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", strings.TrimRight(desc, "\n"))
	}
	return b.String()
}
