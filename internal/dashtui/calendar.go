package dashtui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/amonks/taskdash/task"
)

// maxDayMarkers is the number of task titles shown inside a day cell.
const maxDayMarkers = 3

var dayMarkers = map[task.Status]string{
	task.StatusPending:    "o",
	task.StatusInProgress: "~",
	task.StatusCompleted:  "x",
}

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// moveCursor shifts a calendar cursor by days, keeping midnight in loc.
func moveCursor(cursor time.Time, days int) time.Time {
	return task.StartOfDay(cursor.AddDate(0, 0, days))
}

// shiftMonth moves the cursor to the same day in another month, clamped to
// the month's last day.
func shiftMonth(cursor time.Time, delta int) time.Time {
	first := time.Date(cursor.Year(), cursor.Month()+time.Month(delta), 1, 0, 0, 0, 0, cursor.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(cursor.Day(), last), 0, 0, 0, 0, cursor.Location())
}

// renderCalendar draws month as a seven-column grid. Each cell shows the
// day number, a "*" on today, and up to three task markers.
func renderCalendar(month task.Month, cursorKey, todayKey string, width int) string {
	cellWidth := max((width-7*2)/7, 6)

	header := make([]string, len(weekdayNames))
	for i, name := range weekdayNames {
		header[i] = lipgloss.PlaceHorizontal(cellWidth+2, lipgloss.Center, labelStyle.Render(name))
	}

	rows := []string{
		headerStyle.Render(month.Title()),
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}
	for _, week := range month.Weeks() {
		cells := make([]string, len(week))
		for i, day := range week {
			cells[i] = renderDayCell(day, cursorKey, todayKey, cellWidth)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func renderDayCell(day *task.Day, cursorKey, todayKey string, width int) string {
	lines := make([]string, 0, maxDayMarkers+1)
	style := dayStyle
	if day == nil {
		for len(lines) < maxDayMarkers+1 {
			lines = append(lines, "")
		}
		return style.Width(width).Render(strings.Join(lines, "\n"))
	}

	number := strconv.Itoa(day.Date.Day())
	if day.Key == todayKey {
		number = dayTodayStyle.Render(number + "*")
	}
	lines = append(lines, number)
	for i, t := range day.Tasks {
		if i == maxDayMarkers-1 && len(day.Tasks) > maxDayMarkers {
			lines = append(lines, valueMuted.Render(fmt.Sprintf("+%d more", len(day.Tasks)-i)))
			break
		}
		marker := dayMarkers[t.Status] + " " + strings.Join(strings.Fields(t.Title), " ")
		lines = append(lines, runewidth.Truncate(marker, width, "…"))
	}
	for len(lines) < maxDayMarkers+1 {
		lines = append(lines, "")
	}

	if day.Key == cursorKey {
		style = daySelected
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}
