package api

import (
	"time"

	"github.com/amonks/taskdash/task"
)

// Credentials is the login and signup request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRequest is the create-task request body.
type CreateRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     string        `json:"dueDate,omitempty"`
	Priority    task.Priority `json:"priority"`
	Status      task.Status   `json:"status"`
}

// UpdateRequest is the update-task request body. A nil DueDate clears the
// due date.
type UpdateRequest struct {
	ID          task.ID `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
}

// StatusRequest is the update-status request body. The ID is always sent as
// a string.
type StatusRequest struct {
	ID     string      `json:"id"`
	Status task.Status `json:"status"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// NewCreateRequest builds a create body from normalized input, turning the
// due day into an end-of-day timestamp in loc.
func NewCreateRequest(in task.Input, loc *time.Location) (CreateRequest, error) {
	due, err := in.Due(loc)
	if err != nil {
		return CreateRequest{}, err
	}
	req := CreateRequest{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
	}
	if due != nil {
		req.DueDate = task.FormatWire(*due)
	}
	return req, nil
}

// NewUpdateRequest builds an update body for the task with the given ID.
func NewUpdateRequest(id task.ID, in task.Input, loc *time.Location) (UpdateRequest, error) {
	due, err := in.Due(loc)
	if err != nil {
		return UpdateRequest{}, err
	}
	req := UpdateRequest{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
	}
	if due != nil {
		value := task.FormatWire(*due)
		req.DueDate = &value
	}
	return req, nil
}
