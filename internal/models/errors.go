package models

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one violated field constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError represents missing or malformed input
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, ", ")
}

// Add records a violated field constraint
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any violation was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// BadRequestError is a malformed request that is not a field validation failure
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// ErrBadRequest creates a bad request error
func ErrBadRequest(format string, args ...interface{}) error {
	return &BadRequestError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when no record exists for an id
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ErrNotFound creates a not found error for resource
func ErrNotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// Conflict codes
const (
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
)

// ConflictError is a duplicate unique key or an illegal state change
type ConflictError struct {
	Message string
	Code    string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrConflict creates a conflict error
func ErrConflict(message string) error {
	return &ConflictError{Message: message, Code: CodeConflict}
}

// ErrInvalidTransition creates a conflict for an illegal status change
func ErrInvalidTransition(from DelayStatus, action DelayAction) error {
	return &ConflictError{
		Message: fmt.Sprintf("cannot %s a report with status %s", action, from),
		Code:    CodeInvalidTransition,
	}
}

// UnauthorizedError is a missing or invalid credential
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// ErrUnauthorized creates an unauthorized error
func ErrUnauthorized(message string) error {
	return &UnauthorizedError{Message: message}
}

// ErrDuplicateKey is returned by stores when a unique constraint is violated
var ErrDuplicateKey = errors.New("duplicate key")

// ErrNoRecord is returned by stores when the requested record does not exist
var ErrNoRecord = errors.New("record not found")
