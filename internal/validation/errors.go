package validation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequired     = errors.New("is required")
	ErrTooShort     = errors.New("is too short")
	ErrTooLong      = errors.New("is too long")
	ErrInvalidEmail = errors.New("must be a valid email")
	ErrInvalidValue = errors.New("is invalid")
	ErrEmptyUpdate  = errors.New("no fields to update")
)

type ValidationError struct {
	Errors []FieldError
}

type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
