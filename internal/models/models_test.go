package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserString(t *testing.T) {
	u := &User{ID: 42, Username: "testuser", Email: "test@test.com"}
	assert.Equal(t, "<User #42: testuser, test@test.com>", u.String())
}

func TestUserHandle(t *testing.T) {
	u := &User{Username: "testuser"}
	assert.Equal(t, "@testuser", u.Handle())
}

func TestMessageString(t *testing.T) {
	m := &Message{ID: 7, Text: "hello"}
	assert.Equal(t, "<Message 7>", m.String())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError(cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAppErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"not found", NewNotFoundError("User", 99), 404},
		{"validation", NewValidationError("Password is required"), 400},
		{"conflict", NewConflictError("Username already taken"), 409},
		{"unauthorized", NewUnauthorizedError("Access unauthorized."), 401},
		{"internal", NewInternalError(errors.New("boom")), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}
