package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("price", "Price must be greater than 0"), "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("create product: %w", NewValidationError("name", "required")), "VALIDATION_ERROR"},
		{"not found", NotFound("reminder", "abc"), "NOT_FOUND"},
		{"invalid transition", InvalidTransition("reminder", "abc", "sent", "sent"), "INVALID_TRANSITION"},
		{"dependency", DependencyFailure("list reminders", errors.New("connection refused")), "DEPENDENCY_FAILURE"},
		{"other", errors.New("boom"), "SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestValidationError_Add(t *testing.T) {
	var v ValidationError
	assert.True(t, v.Empty())
	assert.NoError(t, v.OrNil())

	v.Add("email", "Email is required")
	v.Add("email", "Email is invalid")
	v.Add("name", "Name is required")

	assert.Equal(t, "Email is required", v.Fields["email"])
	assert.ErrorIs(t, v.OrNil(), ErrValidation)
	assert.Equal(t, "validation error: email: Email is required; name: Name is required", v.Error())
}

func TestDependencyFailure_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := DependencyFailure("insert reminder", cause)

	assert.ErrorIs(t, err, ErrDependencyFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert reminder")
}
