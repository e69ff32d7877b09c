package apperr

import (
	"errors"
	"net/http"
)

// Envelope is the body of every error response.
type Envelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Normalize maps err to its HTTP status and the error envelope sent to the
// client. Details of internal failures never leave the process; every other
// status carries its declared message.
func Normalize(err error) (int, Envelope) {
	status := HTTPStatus(err)
	env := Envelope{Status: "error"}

	if status == http.StatusInternalServerError {
		env.Message = "Internal Server Error"
		return status, env
	}

	var e *Error
	if !errors.As(err, &e) {
		env.Message = http.StatusText(status)
		return status, env
	}
	env.Message = clientMessage(e)
	if ErrorCode(err) == EInvalid {
		env.Errors = fieldsOf(e)
	}
	return status, env
}

func clientMessage(e *Error) string {
	if e.Msg != "" {
		return e.Msg
	}
	var inner *Error
	if errors.As(e.Err, &inner) {
		return clientMessage(inner)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(HTTPStatus(e))
}

func fieldsOf(e *Error) []FieldError {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	var inner *Error
	if errors.As(e.Err, &inner) {
		return fieldsOf(inner)
	}
	return nil
}
