package task

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sortFixture() []Task {
	return []Task{
		{ID: "1", Title: "low later", Priority: PriorityLow, DueDate: at(2025, 3, 12, 9)},
		{ID: "2", Title: "undated high", Priority: PriorityHigh},
		{ID: "3", Title: "medium soon", Priority: PriorityMedium, DueDate: at(2025, 3, 10, 9)},
		{ID: "4", Title: "high later", Priority: PriorityHigh, DueDate: at(2025, 3, 12, 9)},
		{ID: "5", Title: "undated medium", Priority: PriorityMedium},
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		order SortOrder
		want  []ID
	}{
		{SortServer, []ID{"1", "2", "3", "4", "5"}},
		{SortPriority, []ID{"4", "2", "3", "5", "1"}},
		{SortDue, []ID{"3", "4", "1", "2", "5"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			tasks := sortFixture()
			got := ids(Sort(tasks, tt.order))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Sort(%s) mismatch (-want +got):\n%s", tt.order, diff)
			}
			if diff := cmp.Diff([]ID{"1", "2", "3", "4", "5"}, ids(tasks)); diff != "" {
				t.Fatalf("Sort modified its input (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	if order, err := ParseSortOrder(""); err != nil || order != SortServer {
		t.Fatalf("expected server order by default, got %q (%v)", order, err)
	}
	if order, err := ParseSortOrder("due"); err != nil || order != SortDue {
		t.Fatalf("expected due, got %q (%v)", order, err)
	}
	_, err := ParseSortOrder("random")
	if !errors.Is(err, ErrInvalidSortOrder) {
		t.Fatalf("expected ErrInvalidSortOrder, got %v", err)
	}
}
