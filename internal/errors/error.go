// Package errors defines the coded errors raised by the patchwork runtime.
//
// Steady-state reconciliation has no recoverable error paths: a violated
// invariant (a message of the wrong type, an unhashable property value)
// panics with an *Error. Configuration and transport code return *Error
// values through ordinary error returns.
package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime   Category = "runtime"
	CategoryMount     Category = "mount"
	CategoryStructure Category = "structure"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
)

// Error is a structured error carrying a registry code.
type Error struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, usually naming the values involved.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Fatal marks invariant violations that leave the host tree inconsistent.
	Fatal bool

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
		Fatal:      template.Fatal,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Panic raises e. It is used for invariant violations that the operation
// detecting them cannot continue past.
func Panic(e *Error) {
	panic(e)
}

// Recovered converts a recovered panic value into an error. Values that are
// not errors are wrapped in an E000 error.
func Recovered(r any) error {
	switch v := r.(type) {
	case nil:
		return nil
	case *Error:
		return v
	case error:
		return New(CodeInternal).Wrap(v)
	default:
		return New(CodeInternal).WithDetail("%v", v)
	}
}
