// Package validate binds request values with gin and reports the rule
// failures declared in `binding` struct tags as apperr field errors.
//
// Field names come from the json, form or uri tag of the field, so nested
// values read as "vitals.heartRate". A `msg` tag replaces every generated
// message of its field.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"backend-triage/internal/apperr"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	v := engine()
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("iso8601", isDate); err != nil {
		panic(err)
	}
}

// engine returns the validator behind gin's binding, so tags checked by
// ShouldBind* and by Struct follow the same rules.
func engine() *validator.Validate {
	return binding.Validator.Engine().(*validator.Validate)
}

// Struct checks every rule of obj.
func Struct(obj any) []apperr.FieldError {
	return failures(obj, engine().Struct(obj))
}

// Partial checks only the named struct fields of obj. Nested fields are
// named by their path, e.g. "Vitals.HeartRate".
func Partial(obj any, fields ...string) []apperr.FieldError {
	if len(fields) == 0 {
		return nil
	}
	return failures(obj, engine().StructPartial(obj, fields...))
}

func failures(obj any, err error) []apperr.FieldError {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	root := reflect.TypeOf(obj)
	out := make([]apperr.FieldError, 0, len(errs))
	for _, fe := range errs {
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		out = append(out, apperr.FieldError{
			Field:   field,
			Message: message(fe, field, structTag(root, fe.StructNamespace())),
		})
	}
	return out
}

func message(fe validator.FieldError, field string, tag reflect.StructTag) string {
	if msg := tag.Get("msg"); msg != "" {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "uuid", "uuid_rfc4122":
		return field + " must be a valid identifier"
	case "iso8601":
		return field + " must be a valid ISO 8601 date"
	case "min", "max":
		return rangeMessage(field, fe.Kind(), rules(tag))
	}
	return field + " is invalid"
}

// rangeMessage describes both bounds of a field at once, whichever failed.
func rangeMessage(field string, kind reflect.Kind, r map[string]string) string {
	var unit string
	if kind == reflect.String {
		unit = " characters"
	}
	lo, hasLo := r["min"]
	hi, hasHi := r["max"]
	switch {
	case hasLo && hasHi:
		return fmt.Sprintf("%s must be between %s and %s%s", field, lo, hi, unit)
	case hasLo:
		return fmt.Sprintf("%s must be at least %s%s", field, lo, unit)
	default:
		return fmt.Sprintf("%s must be at most %s%s", field, hi, unit)
	}
}

func rules(tag reflect.StructTag) map[string]string {
	out := map[string]string{}
	for _, rule := range strings.Split(tag.Get("binding"), ",") {
		name, param, _ := strings.Cut(rule, "=")
		out[name] = param
	}
	return out
}

// structTag walks a struct namespace such as "Triage.Vitals.HeartRate" from
// t and returns the tag of the last field.
func structTag(t reflect.Type, ns string) reflect.StructTag {
	_, rest, _ := strings.Cut(ns, ".")
	var tag reflect.StructTag
	for _, name := range strings.Split(rest, ".") {
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return ""
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return ""
		}
		tag, t = f.Tag, f.Type
	}
	return tag
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

// dateLayouts are the ISO 8601 forms accepted for date fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO 8601 date or date-time and returns it in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func isDate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, ok := ParseDate(fl.Field().String())
	return ok
}
