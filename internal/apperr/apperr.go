package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes. Every code maps to one HTTP status in statusByCode.
const (
	EInternal     = "internal error"
	EInvalid      = "invalid"
	EInvalidID    = "invalid id"
	EUnauthorized = "unauthorized"
	ENotFound     = "not found"
	EUnavailable  = "unavailable"
)

// FieldError is one offending field of a failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type shared by the validator, the services and the
// handlers.
//
// Code drives the HTTP status. Msg is safe to show to clients. Op and Err
// chain errors together so operators can see where a failure came from.
// Status overrides the status derived from Code when non-zero.
type Error struct {
	Code   string
	Msg    string
	Op     string
	Err    error
	Fields []FieldError
	Status int
}

// Error implements the error interface by writing out the recursive messages.
func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation failure listing every offending field.
func Validation(op string, fields ...FieldError) *Error {
	return &Error{
		Code:   EInvalid,
		Msg:    "Validation failed",
		Op:     op,
		Fields: fields,
	}
}

// InvalidID reports an identifier that is not well formed.
func InvalidID(op, field string, err error) *Error {
	return &Error{
		Code: EInvalidID,
		Msg:  "Invalid identifier for " + field,
		Op:   op,
		Err:  err,
	}
}

// NotFound reports a missing resource with a client facing message.
func NotFound(op, msg string) *Error {
	return &Error{
		Code: ENotFound,
		Msg:  msg,
		Op:   op,
	}
}

// Unauthorized reports a failed authentication.
func Unauthorized(op, msg string, err error) *Error {
	return &Error{
		Code: EUnauthorized,
		Msg:  msg,
		Op:   op,
		Err:  err,
	}
}

// Unavailable reports that the datastore cannot serve requests.
func Unavailable(op string) *Error {
	return &Error{
		Code: EUnavailable,
		Msg:  "Database unavailable",
		Op:   op,
	}
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) *Error {
	return &Error{
		Code: EInternal,
		Op:   op,
		Err:  err,
	}
}

// ErrorCode returns the code of the outermost *Error carrying one, or
// EInternal for foreign errors.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return EInternal
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return ErrorCode(e.Err)
	}
	return EInternal
}

// ErrorOp returns the op of the error, if available.
func ErrorOp(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	if e.Op != "" {
		return e.Op
	}
	if e.Err != nil {
		return ErrorOp(e.Err)
	}
	return ""
}

var statusByCode = map[string]int{
	EInternal:     http.StatusInternalServerError,
	EInvalid:      http.StatusBadRequest,
	EInvalidID:    http.StatusBadRequest,
	EUnauthorized: http.StatusUnauthorized,
	ENotFound:     http.StatusNotFound,
	EUnavailable:  http.StatusServiceUnavailable,
}

// HTTPStatus returns the status declared by err, falling back to its code.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	if status, ok := statusByCode[ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
