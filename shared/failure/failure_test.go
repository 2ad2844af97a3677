package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"crm/shared/failure"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequestFromString("event_date is outside the lead dates"), code: http.StatusBadRequest, message: "event_date is outside the lead dates"},
		{name: "bad request from error", err: failure.BadRequest(errors.New("invalid json")), code: http.StatusBadRequest, message: "invalid json"},
		{name: "unauthorized", err: failure.Unauthorized("invalid email or password"), code: http.StatusUnauthorized, message: "invalid email or password"},
		{name: "forbidden", err: failure.Forbidden("user account is deactivated"), code: http.StatusForbidden, message: "user account is deactivated"},
		{name: "not found", err: failure.NotFound("event detail"), code: http.StatusNotFound, message: "event detail not found"},
		{name: "conflict", err: failure.Conflict("contact is referenced by leads"), code: http.StatusConflict, message: "contact is referenced by leads"},
		{name: "predefined forbidden", err: failure.ForbiddenError, code: http.StatusForbidden, message: "You don't have the required permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.EqualError(t, tt.err, tt.message)
		})
	}
}

func TestBadRequestNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	t.Run("wrapped failure keeps its code", func(t *testing.T) {
		err := fmt.Errorf("change status: %w", failure.BadRequestFromString("lost reason is required"))

		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("plain error is internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("connection reset")))
	})

	t.Run("nil is internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
	})
}
