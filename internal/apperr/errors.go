// Package apperr defines the error taxonomy shared by the service, API and CLI layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmptyStore = errors.New("nothing stored")
)

// ValidationError reports a missing or empty required field.
// It is returned before any persistence happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ParseError reports stored or imported data that is not a note collection.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// OutOfRangeError reports an attachment index outside the staged list.
// Callers absorb it; it is never shown to the user.
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d)", e.Index, e.Len)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsParse reports whether err is or wraps a *ParseError.
func IsParse(err error) bool {
	var p *ParseError
	return errors.As(err, &p)
}
