package ui

import (
	"os"

	"golang.org/x/term"

	"github.com/amonks/taskdash/task"
)

const (
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiReset  = "\x1b[0m"
)

var statusColors = map[task.Status]string{
	task.StatusPending:    ansiYellow,
	task.StatusInProgress: ansiCyan,
	task.StatusCompleted:  ansiGreen,
}

var priorityColors = map[task.Priority]string{
	task.PriorityHigh: ansiRed + ansiBold,
	task.PriorityLow:  ansiDim,
}

// ColorEnabled reports whether stdout accepts ANSI colour. NO_COLOR and
// TERM=dumb turn it off.
var ColorEnabled = func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func paint(color, value string) string {
	if color == "" || value == "" || !ColorEnabled() {
		return value
	}
	return color + value + ansiReset
}

// Status renders a status label, coloured by status.
func Status(status task.Status) string {
	return paint(statusColors[status], status.Label())
}

// Priority renders a priority, emphasising High and dimming Low.
func Priority(priority task.Priority) string {
	return paint(priorityColors[priority], string(priority))
}

// Overdue renders a due description in red.
func Overdue(value string) string {
	return paint(ansiRed, value)
}

// Bold renders value in bold.
func Bold(value string) string {
	return paint(ansiBold, value)
}

// Dim renders value faint.
func Dim(value string) string {
	return paint(ansiDim, value)
}
