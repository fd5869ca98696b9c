package cli

import (
	"errors"
	"fmt"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitConfig   = 2
	ExitFallback = 3
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
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

// FallbackError reports that generation finished without an image. The
// result itself has already been printed.
type FallbackError struct {
	RequestID string
	Code      string
	Reason    string
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("request %s fell back (%s): %s", e.RequestID, e.Reason, e.Code)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		fallbackErr   *FallbackError
		configErr     *ConfigError
		validationErr config.ValidationError
	)
	switch {
	case errors.As(err, &fallbackErr):
		return ExitFallback
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitConfig
	default:
		return ExitError
	}
}
