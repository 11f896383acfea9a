package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/amonks/taskdash/task"
)

// TaskData is the data used to render the task template.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate bool
	ID       string
	Title    string
	// Due is a YYYY-MM-DD day or empty.
	Due         string
	Priority    string
	Status      string
	Description string
}

// DefaultCreateData returns TaskData for a new task.
func DefaultCreateData() TaskData {
	return TaskData{
		Priority: string(task.PriorityMedium),
		Status:   string(task.StatusPending),
	}
}

// DataFromTask creates TaskData from an existing task, rendering its due
// day in loc.
func DataFromTask(t task.Task, loc *time.Location) TaskData {
	in := task.InputFrom(t, loc)
	return TaskData{
		IsUpdate:    true,
		ID:          t.ID.String(),
		Title:       in.Title,
		Due:         in.DueDate,
		Priority:    string(in.Priority),
		Status:      string(in.Status),
		Description: in.Description,
	}
}

var taskTemplate = template.Must(template.New("task").Funcs(template.FuncMap{
	"choices": func(values []string) string { return strings.Join(values, ", ") },
}).Parse(`title = {{ printf "%q" .Title }}
due = {{ printf "%q" .Due }} # YYYY-MM-DD, today, tomorrow, next friday, or empty
priority = {{ printf "%q" .Priority }} # {{ choices .Priorities }}
{{- if not .IsUpdate }}
status = {{ printf "%q" .Status }} # {{ choices .Statuses }}
{{- end }}
---
{{ .Description }}
`))

type templateData struct {
	TaskData
	Priorities []string
	Statuses   []string
}

// RenderTaskTOML renders the task data as TOML frontmatter followed by the
// description.
func RenderTaskTOML(data TaskData) (string, error) {
	view := templateData{TaskData: data}
	for _, p := range task.ValidPriorities() {
		view.Priorities = append(view.Priorities, string(p))
	}
	for _, s := range task.ValidStatuses() {
		view.Statuses = append(view.Statuses, string(s))
	}

	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTask is the result of parsing edited task TOML.
type ParsedTask struct {
	Title       string `toml:"title"`
	Due         string `toml:"due"`
	Priority    string `toml:"priority"`
	Status      string `toml:"status"`
	Description string
}

// ParseTaskTOML parses the content written by the editor. The due field is
// returned as typed; callers resolve relative expressions.
func ParseTaskTOML(content string) (*ParsedTask, error) {
	frontmatter, body := splitFrontmatter(content)

	var parsed ParsedTask
	if _, err := toml.Decode(frontmatter, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Due = strings.TrimSpace(parsed.Due)
	parsed.Description = strings.TrimSpace(body)
	parsed.Priority = string(task.NormalizePriority(parsed.Priority))
	if parsed.Status != "" {
		parsed.Status = string(task.NormalizeStatus(parsed.Status))
	}

	if err := task.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	if _, err := task.ParsePriority(parsed.Priority); err != nil {
		return nil, err
	}
	if parsed.Status != "" {
		if _, err := task.ParseStatus(parsed.Status); err != nil {
			return nil, err
		}
	}

	return &parsed, nil
}

// Input converts the parsed task with an already resolved due day.
func (p *ParsedTask) Input(dueDay string) task.Input {
	return task.Input{
		Title:       p.Title,
		Description: p.Description,
		DueDate:     dueDay,
		Priority:    task.Priority(p.Priority),
		Status:      task.Status(p.Status),
	}
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	separatorIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			separatorIndex = i
			break
		}
	}
	if separatorIndex == -1 {
		return content, ""
	}

	frontmatter := strings.Join(lines[:separatorIndex], "\n")
	body := strings.Join(lines[separatorIndex+1:], "\n")
	return frontmatter, body
}

// EditTask opens the editor on data and returns the parsed result.
func EditTask(data TaskData) (*ParsedTask, error) {
	content, err := RenderTaskTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "taskdash-task-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}

	return ParseTaskTOML(string(edited))
}
