// Package metrics defines the observability boundary for agent execution.
//
// Recording is fire-and-forget: implementations must never return errors
// into core execution logic, and a no-op recorder is substitutable with
// identical external behavior.
package metrics

// Recorder receives execution events from the executor, the parallel
// coordinator, the workflow engine, and the CLI layer. Implementations must
// be safe for concurrent use from multiple in-flight tasks.
type Recorder interface {
	// AgentInvoked records that an invocation started.
	AgentInvoked(agent, action string)
	// AgentSucceeded records a successful invocation and its duration.
	AgentSucceeded(agent, action string, durationSeconds float64)
	// AgentFailed records a failed invocation.
	AgentFailed(agent, action string)
	// WorkflowStarted records the start of a workflow run.
	WorkflowStarted(workflow string, totalSteps int)
	// WorkflowCompleted records the end of a workflow run. success means no
	// failed steps and passing quality gates.
	WorkflowCompleted(workflow string, success bool, durationSeconds float64, failedSteps int)
	// ParallelCompleted records one finished parallel batch.
	ParallelCompleted(maxWorkers int, durationSeconds float64)
	// CLICommand records a CLI command dispatch.
	CLICommand(command string)
	// CLIError records a CLI command failure.
	CLIError(command string)
}

// NopRecorder discards all events. It satisfies the optional-metrics case
// without nil checks throughout the core.
type NopRecorder struct{}

// NewNopRecorder returns a recorder that discards all events.
func NewNopRecorder() NopRecorder { return NopRecorder{} }

func (NopRecorder) AgentInvoked(agent, action string)                            {}
func (NopRecorder) AgentSucceeded(agent, action string, durationSeconds float64) {}
func (NopRecorder) AgentFailed(agent, action string)                             {}
func (NopRecorder) WorkflowStarted(workflow string, totalSteps int)              {}
func (NopRecorder) WorkflowCompleted(workflow string, success bool, durationSeconds float64, failedSteps int) {
}
func (NopRecorder) ParallelCompleted(maxWorkers int, durationSeconds float64) {}
func (NopRecorder) CLICommand(command string)                                 {}
func (NopRecorder) CLIError(command string)                                   {}
