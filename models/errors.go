package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("requested resource not found")
	ErrConflict = errors.New("conflicts with an existing resource")
	ErrInvalid  = errors.New("invalid input")
)

// ValidationError rejects a write before it touches the store.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Err: ErrInvalid}
}

func NewConflictError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Err: ErrConflict}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(kind Kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
