package services

import (
	"errors"
	"strings"

	"backend-triage/internal/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// storeError classifies an error returned by gorm. Errors raised by model
// hooks already carry a code and pass through.
func storeError(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(op, err)
}

// isDuplicate reports a unique index violation. Drivers without error
// translation are matched on their message.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func parseID(op, id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperr.InvalidID(op, "id", err)
	}
	return parsed.String(), nil
}

// escapeLike escapes the LIKE wildcards of s for use with ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
