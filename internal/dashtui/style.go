package dashtui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amonks/taskdash/task"
)

var (
	borderASCII = lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	tabBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	tabActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Bold(true).Padding(0, 1)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")).Padding(0, 1)

	paneStyle       = lipgloss.NewStyle().Border(borderASCII).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	paneActiveStyle = paneStyle.BorderForeground(lipgloss.Color("33"))
	modalStyle      = lipgloss.NewStyle().Border(borderASCII).Padding(1, 2)

	headerStyle        = lipgloss.NewStyle().Bold(true)
	labelStyle         = lipgloss.NewStyle().Bold(true)
	valueMuted         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cardStyle          = lipgloss.NewStyle().Border(borderASCII).Padding(0, 1)
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24"))
	pendingStyle       = lipgloss.NewStyle().Italic(true)
	overdueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	barFilledStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	barEmptyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	dayStyle      = lipgloss.NewStyle().Border(borderASCII).BorderForeground(lipgloss.Color("238"))
	daySelected   = dayStyle.BorderForeground(lipgloss.Color("33"))
	dayTodayStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

var statusStyles = map[task.Status]lipgloss.Style{
	task.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
}

var statusIcons = map[task.Status]string{
	task.StatusPending:    "[ ]",
	task.StatusInProgress: "[~]",
	task.StatusCompleted:  "[x]",
}

func statusIcon(status task.Status) string {
	if icon, ok := statusIcons[status]; ok {
		return icon
	}
	return "[?]"
}

func renderStatus(status task.Status) string {
	if style, ok := statusStyles[status]; ok {
		return style.Render(status.Label())
	}
	return status.Label()
}
