package cli

import (
	"errors"
	"fmt"
)

// Exit codes of the sentinel command.
const (
	ExitOK      = 0
	ExitBlocked = 1
	ExitError   = 2
)

// UsageError reports invalid flags or arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError creates a new UsageError.
func NewUsageError(message string) *UsageError {
	return &UsageError{Message: message}
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ErrBlocked is returned by commands whose checks did not pass.
var ErrBlocked = errors.New("guardrail checks did not pass")

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrBlocked):
		return ExitBlocked
	default:
		return ExitError
	}
}
