// Package apperrors defines the two failure kinds that reach a caller of an
// image operation: validation failures (bad input, never retried) and
// execution failures (decode, backend or I/O problems).
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the response envelope.
type Kind string

const (
	KindValidation Kind = "validation"
	KindExecution  Kind = "execution"
)

// Error is the structured error type used throughout the module.
type Error struct {
	Kind  Kind
	Field string // offending parameter, validation errors only
	Op    string // operation name, execution errors only
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a validation error for field.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Err: fmt.Errorf(format, args...)}
}

// ValidationWrap wraps err as a validation error for field.
func ValidationWrap(field string, err error) *Error {
	return &Error{Kind: KindValidation, Field: field, Err: err}
}

// Execution wraps err as an execution error of op. A nil err yields nil.
func Execution(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindExecution, Op: op, Err: err}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindValidation
}

// IsExecution reports whether err is anything other than a validation
// failure. Unclassified errors count as execution failures.
func IsExecution(err error) bool {
	return err != nil && !IsValidation(err)
}

// Sentinel errors for common failure modes.
var (
	ErrSourceNotFound    = errors.New("image source not found")
	ErrDecode            = errors.New("invalid image data")
	ErrSizeExceeded      = errors.New("image exceeds size limit")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyBatch        = errors.New("must supply at least one item")
	ErrTimeout           = errors.New("operation timed out")
	ErrUnknownOperation  = errors.New("unknown operation")
)
