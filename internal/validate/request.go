package validate

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"backend-triage/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds the size of a request body.
const MaxBodyBytes = 1 << 20

// Request gathers the failures of one request across its path, query and
// body so a single response lists them all. The first failure reported for
// a field wins.
type Request struct {
	c        *gin.Context
	failures []apperr.FieldError
	err      error
}

// New starts the validation of the request in c.
func New(c *gin.Context) *Request {
	return &Request{c: c}
}

// URI binds the path parameters into obj.
func (r *Request) URI(obj any) {
	r.collect(obj, r.c.ShouldBindUri(obj))
}

// Query binds the query string into obj. Values that do not parse as the
// number their field holds are reported and left unset while the remaining
// values are still bound and checked.
func (r *Request) Query(obj any) {
	err := r.c.ShouldBindQuery(obj)
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		values := r.c.Request.URL.Query()
		r.dropUnparsable(obj, values)
		if err = binding.MapFormWithTag(obj, values, "form"); err == nil {
			err = binding.Validator.ValidateStruct(obj)
		}
	}
	r.collect(obj, err)
}

// JSON decodes the body into obj and checks its rules. It reports whether
// the body was a well formed object, after which the caller may check the
// record the body describes. An empty body decodes as an empty object.
func (r *Request) JSON(obj any) bool {
	if r.c.Request.Body != nil {
		r.c.Request.Body = http.MaxBytesReader(r.c.Writer, r.c.Request.Body, MaxBodyBytes)
	}
	err := r.c.ShouldBindJSON(obj)

	var (
		tooLarge *http.MaxBytesError
		typeErr  *json.UnmarshalTypeError
		synErr   *json.SyntaxError
	)
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
		r.collect(obj, binding.Validator.ValidateStruct(obj))
		return true
	case errors.As(err, &tooLarge):
		r.err = &apperr.Error{
			Code:   apperr.EInvalid,
			Msg:    "Request body too large",
			Op:     "validate.Request.JSON",
			Err:    err,
			Status: http.StatusRequestEntityTooLarge,
		}
		return false
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			r.add(apperr.FieldError{Field: "body", Message: "body must be a JSON object"})
			return false
		}
		r.add(apperr.FieldError{Field: typeErr.Field, Message: typeMessage(typeErr)})
		// The decoder keeps going after a type mismatch, so the other
		// fields are set and can still be checked.
		r.collect(obj, binding.Validator.ValidateStruct(obj))
		return true
	case errors.As(err, &synErr), errors.Is(err, io.ErrUnexpectedEOF):
		r.add(apperr.FieldError{Field: "body", Message: "body must be valid JSON"})
		return false
	}
	r.collect(obj, err)
	return true
}

// Check records failures found by a later check, such as the rules of the
// record a body describes.
func (r *Request) Check(failures []apperr.FieldError) {
	r.add(failures...)
}

// Err returns the error to respond with, or nil when the request is valid.
func (r *Request) Err(op string) error {
	if r.err != nil {
		return r.err
	}
	if len(r.failures) > 0 {
		return apperr.Validation(op, r.failures...)
	}
	return nil
}

func (r *Request) collect(obj any, err error) {
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		if r.err == nil {
			r.err = apperr.Internal("validate.Request", err)
		}
		return
	}
	r.add(failures(obj, errs)...)
}

func (r *Request) add(failures ...apperr.FieldError) {
	for _, f := range failures {
		if !r.reported(f.Field) {
			r.failures = append(r.failures, f)
		}
	}
}

func (r *Request) reported(field string) bool {
	for _, f := range r.failures {
		if f.Field == field {
			return true
		}
	}
	return false
}

// dropUnparsable reports and removes the query values bound to integer
// fields of obj that are not integers.
func (r *Request) dropUnparsable(obj any, values url.Values) {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("form")
		raw, ok := values[key]
		if key == "" || !ok || len(raw) == 0 || !isInt(f.Type) {
			continue
		}
		if _, err := strconv.Atoi(raw[0]); err == nil {
			continue
		}
		msg := f.Tag.Get("msg")
		if msg == "" {
			msg = key + " must be an integer"
		}
		r.add(apperr.FieldError{Field: key, Message: msg})
		values.Del(key)
	}
}

func isInt(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func typeMessage(e *json.UnmarshalTypeError) string {
	t := e.Type
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return e.Field + " must be an object"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return e.Field + " must be a number"
	case reflect.String:
		return e.Field + " must be a string"
	}
	return e.Field + " is invalid"
}
