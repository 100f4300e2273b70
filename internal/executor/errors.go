package executor

import (
	"errors"
	"fmt"
	"time"
)

// WorkflowError is fatal to a whole workflow run: a dependency that has not
// completed, a dependency that failed, or a step failure under fail policy
// or strict mode. The caller receives no WorkflowResult alongside it.
type WorkflowError struct {
	Workflow  string    // Workflow name
	Step      string    // Step being processed when the run aborted
	Message   string    // Human-readable failure description
	Timestamp time.Time // When the abort happened
}

// NewWorkflowError creates a WorkflowError with the current timestamp.
func NewWorkflowError(workflow, step, message string) *WorkflowError {
	return &WorkflowError{
		Workflow:  workflow,
		Step:      step,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("workflow %q: step %q: %s", e.Workflow, e.Step, e.Message)
	}
	return fmt.Sprintf("workflow %q: %s", e.Workflow, e.Message)
}

// IsWorkflowError checks if the error is or wraps a WorkflowError. The CLI
// uses this to distinguish validation/dependency failures from unexpected
// errors when choosing an exit code.
func IsWorkflowError(err error) bool {
	if err == nil {
		return false
	}
	var we *WorkflowError
	return errors.As(err, &we)
}
