package datemath_test

import (
	"errors"
	"testing"
	"time"

	"github.com/amonks/taskdash/internal/datemath"
	"github.com/amonks/taskdash/task"
)

func TestResolve(t *testing.T) {
	// Wednesday, May 1, 2024
	now := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		expr string
		want string
	}{
		{expr: "", want: ""},
		{expr: "today", want: "2024-05-01"},
		{expr: "Tomorrow", want: "2024-05-02"},
		{expr: "yesterday", want: "2024-04-30"},
		{expr: "in 3 days", want: "2024-05-04"},
		{expr: "in  2   weeks", want: "2024-05-15"},
		{expr: "in 1 month", want: "2024-06-01"},
		{expr: "next monday", want: "2024-05-06"},
		{expr: "next wednesday", want: "2024-05-08"},
		{expr: "+2", want: "2024-05-03"},
		{expr: "-1d", want: "2024-04-30"},
		{expr: "2025-02-28", want: "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := datemath.Resolve(tt.expr, now, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestResolveUsesLocation(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	got, err := datemath.Resolve("today", now, zone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-05-02" {
		t.Fatalf("expected the viewer's day, got %q", got)
	}
}

func TestResolveInvalid(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for _, expr := range []string{"someday", "next funday", "2024-13-01", "in many days"} {
		_, err := datemath.Resolve(expr, now, time.UTC)
		if !errors.Is(err, task.ErrInvalidDueDate) {
			t.Errorf("Resolve(%q): expected ErrInvalidDueDate, got %v", expr, err)
		}
	}
}
