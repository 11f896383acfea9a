package dashtui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amonks/taskdash/internal/datemath"
	"github.com/amonks/taskdash/task"
)

type formFieldKind int

const (
	fieldTitle formFieldKind = iota
	fieldDue
	fieldPriority
	fieldStatus
	fieldDescription
)

var fieldLabels = map[formFieldKind]string{
	fieldTitle:       "Title",
	fieldDue:         "Due",
	fieldPriority:    "Priority",
	fieldStatus:      "Status",
	fieldDescription: "Description",
}

type formField struct {
	kind     formFieldKind
	input    textinput.Model
	textarea textarea.Model
}

func newFormField(kind formFieldKind, value, placeholder string) formField {
	field := formField{kind: kind}
	if kind == fieldDescription {
		area := textarea.New()
		area.SetValue(value)
		area.ShowLineNumbers = false
		area.Prompt = ""
		area.Placeholder = placeholder
		area.SetHeight(5)
		field.textarea = area
		return field
	}
	input := textinput.New()
	input.SetValue(value)
	input.Prompt = ""
	input.Placeholder = placeholder
	field.input = input
	return field
}

func (field formField) multiLine() bool {
	return field.kind == fieldDescription
}

func (field formField) Value() string {
	if field.multiLine() {
		return field.textarea.Value()
	}
	return field.input.Value()
}

func (field formField) Focus() (formField, tea.Cmd) {
	if field.multiLine() {
		return field, field.textarea.Focus()
	}
	return field, field.input.Focus()
}

func (field formField) Blur() formField {
	if field.multiLine() {
		field.textarea.Blur()
		return field
	}
	field.input.Blur()
	return field
}

func (field formField) Update(msg tea.Msg) (formField, tea.Cmd) {
	var cmd tea.Cmd
	if field.multiLine() {
		field.textarea, cmd = field.textarea.Update(msg)
		return field, cmd
	}
	field.input, cmd = field.input.Update(msg)
	return field, cmd
}

func (field formField) View() string {
	if field.multiLine() {
		return field.textarea.View()
	}
	return field.input.View()
}

// taskForm edits a new or existing task. Status is only offered for new
// tasks; existing tasks change status through the list keys.
type taskForm struct {
	id     task.ID
	isNew  bool
	fields []formField
	index  int
}

func newTaskForm() taskForm {
	return taskForm{
		isNew: true,
		fields: []formField{
			newFormField(fieldTitle, "", "What needs doing?"),
			newFormField(fieldDue, "", "YYYY-MM-DD, tomorrow, next friday"),
			newFormField(fieldPriority, string(task.PriorityMedium), "Low, Medium, High"),
			newFormField(fieldStatus, string(task.StatusPending), "Pending, In_progress, Completed"),
			newFormField(fieldDescription, "", "Notes (markdown)"),
		},
	}
}

func editTaskForm(t task.Task, loc *time.Location) taskForm {
	in := task.InputFrom(t, loc)
	return taskForm{
		id: t.ID,
		fields: []formField{
			newFormField(fieldTitle, in.Title, ""),
			newFormField(fieldDue, in.DueDate, "YYYY-MM-DD, tomorrow, next friday"),
			newFormField(fieldPriority, string(in.Priority), "Low, Medium, High"),
			newFormField(fieldDescription, in.Description, "Notes (markdown)"),
		},
	}
}

func (f taskForm) Title() string {
	if f.isNew {
		return "New task"
	}
	return "Edit task " + f.id.String()
}

func (f taskForm) Focus() (taskForm, tea.Cmd) {
	var cmd tea.Cmd
	f.fields[f.index], cmd = f.fields[f.index].Focus()
	return f, cmd
}

func (f taskForm) advance(delta int) (taskForm, tea.Cmd) {
	f.fields[f.index] = f.fields[f.index].Blur()
	f.index = (f.index + delta + len(f.fields)) % len(f.fields)
	return f.Focus()
}

func (f taskForm) Update(msg tea.Msg) (taskForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			return f.advance(1)
		case "shift+tab", "backtab":
			return f.advance(-1)
		}
	}
	var cmd tea.Cmd
	f.fields[f.index], cmd = f.fields[f.index].Update(msg)
	return f, cmd
}

func (f taskForm) SetWidth(width int) taskForm {
	width = max(width, 10)
	for i, field := range f.fields {
		if field.multiLine() {
			field.textarea.SetWidth(width)
		} else {
			field.input.Width = width
		}
		f.fields[i] = field
	}
	return f
}

func (f taskForm) value(kind formFieldKind) string {
	for _, field := range f.fields {
		if field.kind == kind {
			return field.Value()
		}
	}
	return ""
}

// Input collects the form into a task input, resolving the due expression
// against now in loc.
func (f taskForm) Input(now time.Time, loc *time.Location) (task.Input, error) {
	due, err := datemath.Resolve(f.value(fieldDue), now, loc)
	if err != nil {
		return task.Input{}, err
	}
	in := task.Input{
		Title:       f.value(fieldTitle),
		Description: f.value(fieldDescription),
		DueDate:     due,
		Priority:    task.Priority(f.value(fieldPriority)),
		Status:      task.Status(f.value(fieldStatus)),
	}
	return in.Normalize(), nil
}

func (f taskForm) View() string {
	lines := []string{headerStyle.Render(f.Title()), ""}
	for i, field := range f.fields {
		label := fieldLabels[field.kind]
		if i == f.index {
			label = "> " + label
		} else {
			label = "  " + label
		}
		lines = append(lines, labelStyle.Render(label))
		lines = append(lines, "  "+strings.ReplaceAll(field.View(), "\n", "\n  "))
	}
	lines = append(lines, "", valueMuted.Render("ctrl+s save | tab next field | esc cancel"))
	return strings.Join(lines, "\n")
}
