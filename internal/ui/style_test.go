package ui

import (
	"testing"

	"github.com/amonks/taskdash/task"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	original := ColorEnabled
	ColorEnabled = func() bool { return enabled }
	t.Cleanup(func() { ColorEnabled = original })
}

func TestStatusPlain(t *testing.T) {
	withColor(t, false)

	if got := Status(task.StatusInProgress); got != "In Progress" {
		t.Fatalf("expected plain label, got %q", got)
	}
	if got := Priority(task.PriorityHigh); got != "High" {
		t.Fatalf("expected plain priority, got %q", got)
	}
}

func TestStatusColored(t *testing.T) {
	withColor(t, true)

	if got := Status(task.StatusCompleted); got != ansiGreen+"Completed"+ansiReset {
		t.Fatalf("expected green label, got %q", got)
	}
	if got := Priority(task.PriorityMedium); got != "Medium" {
		t.Fatalf("expected medium to stay plain, got %q", got)
	}
	if displayWidth(Overdue("2d overdue")) != len("2d overdue") {
		t.Fatal("expected escapes to have no width")
	}
}
