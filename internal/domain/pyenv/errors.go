package pyenv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDownload means a transfer failed or produced no file.
	ErrDownload = errors.New("download failed")
	// ErrIntegrity means the computed digest differs from the published one.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrSubprocess means the external executable exited with a non-zero code.
	ErrSubprocess = errors.New("subprocess failed")
	// ErrDecode means structured output could not be parsed.
	ErrDecode = errors.New("decode failed")

	errUnknownOutputMode = errors.New("unknown output mode")
)

// SubprocessError carries the arguments and exit code of a failed call.
// The tool's own error text is not part of the error.
type SubprocessError struct {
	Args     []string
	ExitCode int
}

// Error implements the error interface.
func (e *SubprocessError) Error() string {
	return fmt.Sprintf("micromamba %s: exit code %d", strings.Join(e.Args, " "), e.ExitCode)
}

// Unwrap returns ErrSubprocess so callers can use errors.Is.
func (e *SubprocessError) Unwrap() error { return ErrSubprocess }

// ErrorValue is returned in place of a crash when a script invocation fails.
type ErrorValue struct {
	// Message is the human-readable failure text.
	Message string
	// Err is the underlying cause.
	Err error
}

// NewErrorValue wraps err into an ErrorValue.
func NewErrorValue(err error) *ErrorValue {
	return &ErrorValue{
		Message: err.Error(),
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ErrorValue) Error() string { return e.Message }

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *ErrorValue) Unwrap() error { return e.Err }
