package domain

import (
	"errors"
	"strings"
)

// ErrNotFound indicates the requested entity does not exist or is owned by
// another account. Callers cannot distinguish the two cases.
var ErrNotFound = errors.New("not found")

// ValidationError carries one message per violated field constraint.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Messages, "; ")
}

func newValidationError(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}
