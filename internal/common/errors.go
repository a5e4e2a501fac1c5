package common

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Error kinds shared by repositories, services and handlers.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDependencyFailure = errors.New("dependency failure")
)

// ValidationError carries per-field messages for malformed or
// constraint-violating input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns nil when no field failed so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFound reports a missing entity.
func NotFound(resource string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, resource, id)
}

// InvalidTransition reports a status-machine violation.
func InvalidTransition(resource string, id any, from, to string) error {
	return fmt.Errorf("%w: %s %v cannot move from %s to %s", ErrInvalidTransition, resource, id, from, to)
}

// DependencyFailure wraps a collaborator I/O error.
func DependencyFailure(op string, err error) error {
	return errors.Join(ErrDependencyFailure, fmt.Errorf("%s: %w", op, err))
}

// KindOf names the error kind for logs and responses.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrDependencyFailure):
		return "DEPENDENCY_FAILURE"
	default:
		return "SERVER_ERROR"
	}
}
