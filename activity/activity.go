// Package activity records the human-readable feed of task mutations made
// during a dashboard session.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/amonks/taskdash/task"
)

// Entry is one immutable feed line.
type Entry struct {
	Text string
	At   time.Time
}

// Log is an in-memory, most-recent-first activity feed. Entries live only
// as long as the Log.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewLog creates an empty log. A nil clock uses time.Now.
func NewLog(now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{now: now}
}

// Record prepends an entry.
func (l *Log) Record(text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := Entry{Text: text, At: l.now()}
	l.entries = append([]Entry{entry}, l.entries...)
	return entry
}

// Entries returns the feed, most recent first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Added is the feed text for a created task.
func Added(title string) string {
	return fmt.Sprintf("Added task: %q", title)
}

// Edited is the feed text for an updated task.
func Edited(title string) string {
	return fmt.Sprintf("Edited task: %q", title)
}

// StatusChanged is the feed text for a status update.
func StatusChanged(title string, status task.Status) string {
	return fmt.Sprintf("Updated %q → %s", title, status.Label())
}

// Deleted is the feed text for a removed task.
func Deleted(title string) string {
	return fmt.Sprintf("Deleted task: %q", title)
}
