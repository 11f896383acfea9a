// Package task models the todo items served by the remote task API and the
// client-side views derived from them.
//
// The package is pure: it holds the in-memory Store of the most recently
// fetched tasks and the functions that derive views from it:
//   - Filter for the All / Completed / Today / Search / selected-date views
//   - Aggregate for dashboard statistics
//   - BuildMonth for the calendar grid
//
// Nothing here talks to the network; see package api for that.
package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amonks/taskdash/internal/validation"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	// StatusPending indicates the task has not been started.
	StatusPending Status = "Pending"

	// StatusInProgress indicates the task is being worked on.
	StatusInProgress Status = "In_progress"

	// StatusCompleted indicates the task is done.
	StatusCompleted Status = "Completed"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Label returns the human-readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// NormalizeStatus maps the spellings the server and users produce onto the
// canonical statuses. Unknown values are returned unchanged.
func NormalizeStatus(value string) Status {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "pending", "todo", "open":
		return StatusPending
	case "in_progress", "inprogress", "started", "start":
		return StatusInProgress
	case "completed", "complete", "done":
		return StatusCompleted
	default:
		return Status(strings.TrimSpace(value))
	}
}

// ParseStatus is NormalizeStatus for user input: unknown values are an error.
func ParseStatus(value string) (Status, error) {
	status := NormalizeStatus(value)
	if !status.IsValid() {
		return "", validation.InvalidValueError(ErrInvalidStatus, value, ValidStatuses())
	}
	return status, nil
}

// UnmarshalJSON decodes a status, normalizing server spellings.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}
	*s = NormalizeStatus(raw)
	return nil
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium" // default
	PriorityHigh   Priority = "High"
)

// ValidPriorities returns all valid priority values, lowest first.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Rank orders priorities for sorting, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// NormalizePriority matches priority names case-insensitively. Empty input
// becomes PriorityMedium; unknown values are returned unchanged.
func NormalizePriority(value string) Priority {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PriorityMedium
	}
	for _, p := range ValidPriorities() {
		if strings.EqualFold(trimmed, string(p)) {
			return p
		}
	}
	return Priority(trimmed)
}

// ParsePriority is NormalizePriority for user input: unknown values are an error.
func ParsePriority(value string) (Priority, error) {
	priority := NormalizePriority(value)
	if !priority.IsValid() {
		return "", validation.InvalidValueError(ErrInvalidPriority, value, ValidPriorities())
	}
	return priority, nil
}

// UnmarshalJSON decodes a priority, normalizing case.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode priority: %w", err)
	}
	*p = NormalizePriority(raw)
	return nil
}
