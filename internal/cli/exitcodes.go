package cli

import (
	"errors"

	"binder/internal/service/folders"
)

// Exit codes for binderctl commands
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: storage failures and anything without a better code.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: missing flags or an unknown kind.
	ExitUsage = 2

	// ExitNotFound indicates a requested folder or record does not exist.
	ExitNotFound = 3

	// ExitConflict indicates the request clashes with current state,
	// such as deleting a folder that still has members.
	ExitConflict = 4

	// ExitValidation indicates the input was rejected.
	ExitValidation = 5

	// ExitDenied indicates the caller lacks a capability.
	ExitDenied = 6
)

// CommandError carries the process exit code for a failed command
type CommandError struct {
	Code int
	Err  error
}

func (e *CommandError) Error() string { return e.Err.Error() }
func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ExitError
}

// exitCodeFor picks the exit code for a failed gateway result
func exitCodeFor(kind folders.FailureKind) int {
	switch kind {
	case folders.FailureNotFound:
		return ExitNotFound
	case folders.FailureNotEmpty:
		return ExitConflict
	case folders.FailureInvalidInput:
		return ExitValidation
	case folders.FailureUnauthorized:
		return ExitDenied
	default:
		return ExitError
	}
}
