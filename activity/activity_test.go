package activity

import (
	"sync"
	"testing"
	"time"

	"github.com/amonks/taskdash/task"
)

func TestRecordPrepends(t *testing.T) {
	clock := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	log := NewLog(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	log.Record("first")
	log.Record("second")
	log.Record("second")

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries without dedup, got %d", len(entries))
	}
	if entries[0].Text != "second" || entries[2].Text != "first" {
		t.Fatalf("expected most recent first, got %+v", entries)
	}
	if !entries[0].At.After(entries[2].At) {
		t.Fatalf("expected timestamps to follow record order")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	log := NewLog(nil)
	log.Record("one")
	entries := log.Entries()
	entries[0].Text = "changed"
	if log.Entries()[0].Text != "one" {
		t.Fatalf("expected log to be unaffected")
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Added("Buy milk"), `Added task: "Buy milk"`},
		{Edited("Buy milk"), `Edited task: "Buy milk"`},
		{StatusChanged("Buy milk", task.StatusInProgress), `Updated "Buy milk" → In Progress`},
		{Deleted("Buy milk"), `Deleted task: "Buy milk"`},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestConcurrentRecord(t *testing.T) {
	log := NewLog(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Record("x")
		}()
	}
	wg.Wait()
	if log.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", log.Len())
	}
}
