// Package clierr defines structured error types for CLI commands.
// Errors carry a machine-readable code, a human-readable message,
// optional details and an optional wrapped cause.
package clierr

import (
	"fmt"
	"strconv"
)

// Error code constants. Uppercase, underscore-separated, stable across minor versions.
const (
	TaskNotFound      = "TASK_NOT_FOUND"
	TodoDirNotFound   = "TODO_DIR_NOT_FOUND"
	TodoDirExists     = "TODO_DIR_EXISTS"
	IOError           = "IO_ERROR"
	InvalidInput      = "INVALID_INPUT"
	InvalidPriority   = "INVALID_PRIORITY"
	InvalidItemNumber = "INVALID_ITEM_NUMBER"
	InvalidDate       = "INVALID_DATE"
	InvalidFormat     = "INVALID_FORMAT"
	InvalidGroupBy    = "INVALID_GROUP_BY"
	InvalidSort       = "INVALID_SORT"
	ConfirmationReq   = "CONFIRMATION_REQUIRED"
	NoChanges         = "NO_CHANGES"
	MergeFailed       = "MERGE_FAILED"
	InternalError     = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that carries err as its cause.
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
