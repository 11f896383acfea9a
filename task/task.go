package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Task is a single todo item as served by the backend.
type Task struct {
	ID          ID
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	Status      Status
	CreatedAt   *time.Time
}

// HasDue reports whether the task has a due date.
func (t Task) HasDue() bool {
	return t.DueDate != nil
}

// DueKey returns the local calendar day of the due date, or "" when the task
// has none.
func (t Task) DueKey(loc *time.Location) string {
	if t.DueDate == nil {
		return ""
	}
	return DayKey(*t.DueDate, loc)
}

// WithStatus returns a copy of the task with the given status.
func (t Task) WithStatus(status Status) Task {
	t.Status = status
	return t
}

// Input holds the user-editable fields of a task for create and update calls.
type Input struct {
	Title       string
	Description string
	// DueDate is a calendar day in YYYY-MM-DD form, or empty.
	DueDate  string
	Priority Priority
	Status   Status
}

// InputFrom returns the editable fields of an existing task.
func InputFrom(t Task, loc *time.Location) Input {
	return Input{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueKey(loc),
		Priority:    t.Priority,
		Status:      t.Status,
	}
}

// Normalize trims text fields and fills the create defaults: Medium priority
// and Pending status.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DueDate = strings.TrimSpace(in.DueDate)
	in.Priority = NormalizePriority(string(in.Priority))
	if strings.TrimSpace(string(in.Status)) == "" {
		in.Status = StatusPending
	} else {
		in.Status = NormalizeStatus(string(in.Status))
	}
	return in
}

// Due returns the end-of-day due time for the input's due date.
func (in Input) Due(loc *time.Location) (*time.Time, error) {
	if in.DueDate == "" {
		return nil, nil
	}
	due, err := EndOfDay(in.DueDate, loc)
	if err != nil {
		return nil, err
	}
	return &due, nil
}

type taskJSON struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *string  `json:"dueDate,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Status      Status   `json:"status"`
	CreatedAt   *string  `json:"createdAt,omitempty"`
}

// MarshalJSON encodes the task in the backend's field naming with RFC 3339
// timestamps.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
	}
	if t.DueDate != nil {
		value := t.DueDate.Format(time.RFC3339)
		out.DueDate = &value
	}
	if t.CreatedAt != nil {
		value := t.CreatedAt.Format(time.RFC3339)
		out.CreatedAt = &value
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a task. Timestamps without an offset are read in
// the local zone; empty timestamps mean "not set". Use DecodeTasks to read
// them in another zone.
func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	decoded, err := in.task(time.Local)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// DecodeTasks decodes a JSON array of tasks, reading timestamps that carry
// no offset as wall-clock times in loc.
func DecodeTasks(data []byte, loc *time.Location) ([]Task, error) {
	var raw []taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(raw))
	for _, in := range raw {
		t, err := in.task(loc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (in taskJSON) task(loc *time.Location) (Task, error) {
	decoded := Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    NormalizePriority(string(in.Priority)),
		Status:      in.Status,
	}
	var err error
	if decoded.DueDate, err = parseOptionalTime(in.DueDate, loc); err != nil {
		return Task{}, fmt.Errorf("decode task %s due date: %w", in.ID, err)
	}
	if decoded.CreatedAt, err = parseOptionalTime(in.CreatedAt, loc); err != nil {
		return Task{}, fmt.Errorf("decode task %s created at: %w", in.ID, err)
	}
	return decoded, nil
}

func parseOptionalTime(value *string, loc *time.Location) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := ParseTimestamp(*value, loc)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
