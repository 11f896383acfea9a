package dashtui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/amonks/taskdash/internal/markdown"
	"github.com/amonks/taskdash/internal/ui"
	"github.com/amonks/taskdash/task"
)

const cardDateLayout = "02 Jan 2006"

type taskItem struct {
	task    task.Task
	pending bool
	due     string
	overdue bool
}

func (item taskItem) FilterValue() string {
	return item.task.Title
}

type taskItemDelegate struct{}

func (d taskItemDelegate) Height() int                             { return 1 }
func (d taskItemDelegate) Spacing() int                            { return 0 }
func (d taskItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(taskItem)
	if !ok {
		return
	}
	line := formatTaskItem(item, m.Width())
	switch {
	case index == m.Index():
		line = selectedStyle.Render(line)
	case item.task.Status == task.StatusCompleted:
		line = valueMuted.Render(line)
	case item.pending:
		line = pendingStyle.Render(line)
	case item.overdue:
		line = overdueStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// formatTaskItem lays out icon, title, priority, and due on one line of
// width columns. The title takes whatever the other columns leave.
func formatTaskItem(item taskItem, width int) string {
	title := strings.Join(strings.Fields(item.task.Title), " ")
	if title == "" {
		title = "(untitled)"
	}
	meta := fmt.Sprintf("%-6s %s", item.task.Priority, item.due)
	if item.pending {
		meta += " *"
	}
	titleWidth := width - runewidth.StringWidth(meta) - len(statusIcon(item.task.Status)) - 3
	if titleWidth < 4 {
		return runewidth.Truncate(statusIcon(item.task.Status)+" "+title, max(width, 0), "…")
	}
	title = runewidth.FillRight(runewidth.Truncate(title, titleWidth, "…"), titleWidth)
	return statusIcon(item.task.Status) + " " + title + "  " + meta
}

func newTaskList() list.Model {
	l := list.New(nil, taskItemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	return l
}

func taskItems(tasks []task.Task, pending func(task.ID) bool, now time.Time) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{
			task:    t,
			pending: pending(t.ID),
			due:     ui.FormatDue(t.DueDate, now, now.Location()),
			overdue: t.DueDate != nil && t.DueDate.Before(now) && t.Status != task.StatusCompleted,
		})
	}
	return items
}

// renderTaskCard shows every field of a task for the detail pane.
func renderTaskCard(t task.Task, pending bool, loc *time.Location, width int) string {
	var lines []string
	lines = append(lines, headerStyle.Render(t.Title))
	lines = append(lines, "")

	field := func(label, value string) {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-10s", label))+" "+value)
	}
	field("ID", t.ID.String())
	field("Status", renderStatus(t.Status))
	field("Priority", string(t.Priority))
	if t.DueDate != nil {
		field("Due", t.DueDate.In(loc).Format(cardDateLayout))
	} else {
		field("Due", valueMuted.Render("none"))
	}
	if t.CreatedAt != nil {
		field("Created", t.CreatedAt.In(loc).Format(cardDateLayout))
	}
	if pending {
		lines = append(lines, valueMuted.Render("saving..."))
	}

	if description := markdown.Render(width, 0, t.Description); description != "" {
		lines = append(lines, "", description)
	}
	return strings.Join(lines, "\n")
}

func renderStatCards(stats task.Stats) string {
	cards := []string{
		cardStyle.Render(fmt.Sprintf("[c] Completed %d", stats.Completed)),
		cardStyle.Render(fmt.Sprintf("[a] Total %d", stats.Total)),
		cardStyle.Render(fmt.Sprintf("[t] Today %d", stats.Today)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}
