package task

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation is wrapped by every input validation error.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyTitle is returned when a task title is empty.
	ErrEmptyTitle = fmt.Errorf("%w: title is required", ErrValidation)

	// ErrInvalidStatus is returned when an invalid status is provided.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrValidation)

	// ErrInvalidPriority is returned when an invalid priority is provided.
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)

	// ErrInvalidSortOrder is returned when an unknown sort order is named.
	ErrInvalidSortOrder = fmt.Errorf("%w: invalid sort order", ErrValidation)

	// ErrInvalidDueDate is returned when a due date cannot be parsed.
	ErrInvalidDueDate = fmt.Errorf("%w: invalid due date", ErrValidation)

	// ErrTaskNotFound is returned when a task ID is not in the store.
	ErrTaskNotFound = errors.New("task not found")
)

// ValidateTitle checks that a title is present.
func ValidateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Validate performs the presence checks required before a create or update
// call. The input should already be normalized.
func (in Input) Validate() error {
	if err := ValidateTitle(in.Title); err != nil {
		return err
	}
	if in.Priority != "" && !in.Priority.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidPriority, in.Priority)
	}
	if in.Status != "" && !in.Status.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, in.Status)
	}
	if in.DueDate != "" {
		if _, err := ParseDay(in.DueDate, time.UTC); err != nil {
			return err
		}
	}
	return nil
}
