// ABOUTME: Common storage errors
// ABOUTME: Sentinel and typed errors shared by the store, CSV import, and callers

package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested restaurant does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrImportFormat matches every *ImportFormatError via errors.Is.
var ErrImportFormat = errors.New("invalid import format")

// ValidationError reports a missing or malformed field. Nothing is written
// when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// invalid builds a ValidationError from a field and an underlying cause.
func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error()}
}

// ImportFormatError reports that an import file lacks mandatory columns.
// The whole import is rejected.
type ImportFormatError struct {
	Missing []string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("import is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Is lets errors.Is(err, ErrImportFormat) match.
func (e *ImportFormatError) Is(target error) bool {
	return target == ErrImportFormat
}
