package config

import (
	"errors"
	"fmt"
)

// ConfigError wraps failures to load, parse, or validate configuration.
type ConfigError struct {
	Path    string
	Message string
	Err     error
}

func NewConfigError(path, message string, err error) *ConfigError {
	return &ConfigError{Path: path, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, msg)
	}
	return fmt.Sprintf("config: %s", msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid workflow definition before any step
// has executed.
type ValidationError struct {
	Workflow string
	Problems []string
}

func NewValidationError(workflow string, problems []string) *ValidationError {
	return &ValidationError{Workflow: workflow, Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("workflow %q invalid: %s", e.Workflow, e.Problems[0])
	}
	return fmt.Sprintf("workflow %q invalid: %d problems, first: %s",
		e.Workflow, len(e.Problems), e.Problems[0])
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
