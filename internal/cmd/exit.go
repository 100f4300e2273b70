package cmd

import (
	"errors"

	"github.com/harrison/maestro/internal/config"
	"github.com/harrison/maestro/internal/executor"
)

// FailureError marks a run that executed as designed but produced failures:
// errored results, failed steps, or failed quality gates. It is expected
// output, not a malfunction, and maps to exit code 1.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string {
	return e.Message
}

// ExitCode maps an error returned by command execution to a process exit
// code: 0 for success, 1 for orchestration failures the user asked about
// (failed tasks, aborted workflows, bad configuration or workflow files),
// and 2 for unexpected errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var fe *FailureError
	var we *executor.WorkflowError
	var ce *config.ConfigError
	var ve *config.ValidationError
	if errors.As(err, &fe) || errors.As(err, &we) || errors.As(err, &ce) || errors.As(err, &ve) {
		return 1
	}
	return 2
}
