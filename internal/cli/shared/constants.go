// Package shared provides constants and types used across CLI subpackages.
package shared

import (
	"errors"
	"fmt"
)

// Exit codes for the changekeeper CLI.
// These codes support programmatic composition and CI/CD integration.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure or a failed check
	ExitFailure = 1

	// ExitConflict indicates the document changed between read and write;
	// re-running the command is safe
	ExitConflict = 2

	// ExitInvalidArguments indicates invalid command arguments or event payloads
	ExitInvalidArguments = 3

	// ExitAuthMissing indicates a required credential was not provided
	ExitAuthMissing = 4
)

// Command group IDs shown in root help.
const (
	GroupEvents        = "events"
	GroupDocument      = "document"
	GroupVersions      = "versions"
	GroupConfiguration = "configuration"
	GroupInternal      = "internal"
)

// ConfigFlagName is the persistent flag naming an explicit config file.
const ConfigFlagName = "config"

// ExitError carries a process exit code through cobra's error return.
// The message has already been shown to the user when it is returned.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an error that makes the process exit with code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// ExitCode returns the process exit code for err: ExitSuccess for nil, the
// carried code for an ExitError anywhere in the chain, ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
