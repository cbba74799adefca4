package respawn

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrorType represents error categories for respawn operations.
// These categories drive exit-code mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeConfiguration     ErrorType = "configuration"
	ErrorTypeMalformedOverride ErrorType = "malformed_override"
	ErrorTypeSpawn             ErrorType = "spawn"
	ErrorTypeRelay             ErrorType = "relay"
	ErrorTypeInternal          ErrorType = "internal_error"
)

// Error is the error type returned by this package.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same type and message, so the sentinel
// errors below work with errors.Is even after WithCause/WithContext.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == e.Message
}

// NewError creates a new Error with the given type and message
func NewError(typ ErrorType, message string) *Error {
	return &Error{
		Type:    typ,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithCause adds an underlying cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

var (
	// ErrNoFlags is returned when the recognized flag set is missing or empty.
	ErrNoFlags = NewError(ErrorTypeConfiguration, "you must specify flags to respawn with")

	// ErrNoArgs is returned when no argument vector was supplied.
	ErrNoArgs = NewError(ErrorTypeConfiguration, "you must specify the argument vector to respawn")

	// ErrNoExecutable is returned when the launch vector has no executable.
	ErrNoExecutable = NewError(ErrorTypeConfiguration, "argument vector has no executable")
)

// IsType reports whether err is an *Error of the given type.
func IsType(err error, typ ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == typ
}

func spawnError(argv []string, cause error) *Error {
	return NewError(ErrorTypeSpawn, fmt.Sprintf("failed to start %s", argv[0])).
		WithCause(cause).
		WithContext("argv", strings.Join(argv, " ")).
		WithContext("not_found", isNotFound(cause)).
		WithContext("permission", errors.Is(cause, os.ErrPermission))
}

// isNotFound covers both a missing path and a bare name absent from PATH.
func isNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound)
}

func relayError(stream string, cause error) *Error {
	return NewError(ErrorTypeRelay, "relaying child "+stream).
		WithCause(cause).
		WithContext("stream", stream)
}
