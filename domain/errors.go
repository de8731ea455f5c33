package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrMissingField     = errors.New("missing required field")
	ErrNotNumeric       = errors.New("not a number")
	ErrOutOfRange       = errors.New("out of range")
	ErrUnknownUsageType = errors.New("unknown usage type")
	ErrInvalidEmail     = errors.New("invalid email address")
)

// InputError wraps a sentinel with the offending field.
type InputError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s (value=%q)", e.Field, e.Wrapped, e.Value)
}

func (e *InputError) Unwrap() error { return e.Wrapped }

// NewInputError creates an InputError.
func NewInputError(field, value string, wrapped error) *InputError {
	return &InputError{Field: field, Value: value, Wrapped: wrapped}
}
