package models

import (
	"errors"
	"strings"
)

// ErrForbidden is matched by every ForbiddenError
var ErrForbidden = errors.New("forbidden")

// ValidationError reports a form that cannot be written
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return strings.Join(e.Fields, ", ") + " required"
}

// Required builds a ValidationError for missing fields, or nil when none are missing
func Required(message string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields, Message: message}
}

// ForbiddenError reports an actor lacking permission for a resource
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
