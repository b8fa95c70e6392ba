// Package daemonerrors is the error taxonomy shared by every driver,
// controller, and command handler in the daemon. It is a deliberately
// trimmed cousin of a typical enhanced-error type: callers here need a
// category and a message, not HTTP status codes or retry-strategy metadata,
// since the only two audiences for these errors are a debug log line and a
// wire-protocol error response.
package daemonerrors

import (
	"errors"
	"fmt"
)

// Category is the closed set of error kinds the core can produce.
type Category string

const (
	// Bus marks a failure in the I2C transport layer.
	Bus Category = "bus_error"
	// Unsupported marks an operation the current chip/model does not implement.
	Unsupported Category = "unsupported"
	// Uninitialized marks a query made before a driver's init() completed.
	Uninitialized Category = "uninitialized"
	// Config marks a configuration parse, validation, or save failure.
	Config Category = "config_error"
	// InvalidArgument marks a malformed or out-of-range command parameter.
	InvalidArgument Category = "invalid_argument"
	// Conflict marks a request that conflicts with current policy state.
	Conflict Category = "conflict"
)

// Error is the concrete error type carrying a Category alongside the usual
// message and wrapped cause.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target shares this error's category, so callers can do
// errors.Is(err, daemonerrors.New(daemonerrors.Bus, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Category == e.Category
	}
	return false
}

// New constructs an Error with no wrapped cause.
func New(cat Category, msg string) *Error {
	return &Error{Category: cat, Message: msg}
}

// Wrap constructs an Error wrapping cause.
func Wrap(cat Category, msg string, cause error) *Error {
	return &Error{Category: cat, Message: msg, Cause: cause}
}

// Busf builds a formatted Bus error, the shape i2cbus needs for every
// transport failure.
func Busf(format string, args ...interface{}) *Error {
	return New(Bus, fmt.Sprintf(format, args...))
}

// Unsupportedf builds a formatted Unsupported error.
func Unsupportedf(format string, args ...interface{}) *Error {
	return New(Unsupported, fmt.Sprintf(format, args...))
}

// Uninitializedf builds a formatted Uninitialized error.
func Uninitializedf(format string, args ...interface{}) *Error {
	return New(Uninitialized, fmt.Sprintf(format, args...))
}

// Configf builds a formatted Config error.
func Configf(format string, args ...interface{}) *Error {
	return New(Config, fmt.Sprintf(format, args...))
}

// InvalidArgumentf builds a formatted InvalidArgument error.
func InvalidArgumentf(format string, args ...interface{}) *Error {
	return New(InvalidArgument, fmt.Sprintf(format, args...))
}

// Conflictf builds a formatted Conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return New(Conflict, fmt.Sprintf(format, args...))
}

// CategoryOf extracts the Category of err, or "" if err is not one of ours.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}
