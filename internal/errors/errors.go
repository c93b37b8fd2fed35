// Package errors provides structured error types and exit codes for dobbytest.
//
// Test failures are never reported through this package: they are counted
// by the runner. These errors cover everything around a run, such as a bad
// command line, an invalid configuration or a missing assets directory.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = 0   // Success
	ExitRuntimeError     = 1   // Runtime error outside of the tests
	ExitConfigError      = 2   // Configuration or usage error
	ExitEnvironmentError = 3   // Environment error (assets missing, etc.)
	ExitInterrupted      = 130 // Run interrupted by a signal
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindValidation
	KindEnvironment
	KindInterrupted
)

// Error is the base error type for dobbytest.
type Error struct {
	Kind    ErrorKind
	Message string
	Group   string // Test group name if applicable
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Group != "" {
		msg = fmt.Sprintf("[%s] %s", e.Group, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	case KindInterrupted:
		return ExitInterrupted
	default:
		return ExitRuntimeError
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: fmt.Sprintf(format, args...),
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindEnvironment,
		Message: fmt.Sprintf(format, args...),
	}
}

// Interrupted wraps the cancellation cause of an interrupted run.
func Interrupted(cause error) *Error {
	return &Error{
		Kind:    KindInterrupted,
		Message: "run interrupted",
		Cause:   cause,
	}
}

// WrapKind wraps an error keeping the given kind.
func WrapKind(kind ErrorKind, err error, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// GroupError creates an error attributed to a test group.
func GroupError(group string, cause error) *Error {
	return &Error{
		Kind:    KindRuntime,
		Group:   group,
		Message: "group failed",
		Cause:   cause,
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var de *Error
	if stderrors.As(err, &de) {
		return de.ExitCode()
	}
	return ExitRuntimeError
}
