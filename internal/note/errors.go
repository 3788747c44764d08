package note

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("note not found")
	ErrConflict        = errors.New("slug already taken")
	ErrValidation      = errors.New("validation error")
	ErrNoPassword      = errors.New("no password set")
	ErrInvalidPassword = errors.New("invalid password")
)

// ValidationError aggregates every field constraint a request violated.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(msg string) {
	e.Messages = append(e.Messages, msg)
}

// err returns nil when nothing was collected.
func (e *ValidationError) err() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}
