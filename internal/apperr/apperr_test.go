package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "foreign", err: errors.New("boom"), want: EInternal},
		{name: "direct", err: NotFound("op", "Patient not found"), want: ENotFound},
		{name: "wrapped by fmt", err: fmt.Errorf("ctx: %w", Validation("op")), want: EInvalid},
		{name: "code from inner", err: &Error{Err: Unavailable("op")}, want: EUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("validation lists every field", func(t *testing.T) {
		err := Validation("op",
			FieldError{Field: "firstName", Message: "firstName is required"},
			FieldError{Field: "dateOfBirth", Message: "dateOfBirth is required"},
		)
		status, env := Normalize(err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, "Validation failed", env.Message)
		assert.Len(t, env.Errors, 2)
	})

	t.Run("malformed identifier is generic", func(t *testing.T) {
		status, env := Normalize(InvalidID("op", "id", errors.New("invalid UUID length: 3")))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid identifier for id", env.Message)
		assert.Empty(t, env.Errors)
	})

	t.Run("internal detail is withheld", func(t *testing.T) {
		status, env := Normalize(Internal("op", errors.New("pq: connection refused")))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal Server Error", env.Message)
	})

	t.Run("foreign errors are internal", func(t *testing.T) {
		status, env := Normalize(errors.New("secret detail"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal Server Error", env.Message)
	})

	t.Run("declared status wins", func(t *testing.T) {
		err := &Error{Code: EInvalid, Msg: "Request body too large", Status: http.StatusRequestEntityTooLarge}
		status, env := Normalize(err)
		assert.Equal(t, http.StatusRequestEntityTooLarge, status)
		assert.Equal(t, "Request body too large", env.Message)
	})

	t.Run("only internal errors are generic", func(t *testing.T) {
		for _, code := range []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
			status, env := Normalize(&Error{Msg: "Upstream unavailable", Status: code})
			assert.Equal(t, code, status)
			assert.Equal(t, "Upstream unavailable", env.Message, code)
		}
	})

	t.Run("not found and unauthorized pass their message", func(t *testing.T) {
		status, env := Normalize(NotFound("op", "Triage not found"))
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Triage not found", env.Message)

		status, env = Normalize(Unauthorized("op", "Unauthorized: token missing", nil))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Unauthorized: token missing", env.Message)
	})

	t.Run("unavailable keeps its message", func(t *testing.T) {
		status, env := Normalize(Unavailable("op"))
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "Database unavailable", env.Message)
	})
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "Validation failed", Validation("op").Error())
	assert.Equal(t, "Invalid identifier for id: bad", InvalidID("op", "id", errors.New("bad")).Error())
	assert.Equal(t, "<internal error>", (&Error{Code: EInternal}).Error())
	assert.Equal(t, "services.PatientService.Create", ErrorOp(fmt.Errorf("x: %w", Internal("services.PatientService.Create", nil))))
}
