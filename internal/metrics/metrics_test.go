package metrics

import "testing"

func TestNopRecorderImplementsRecorder(t *testing.T) {
	var r Recorder = NewNopRecorder()

	// All events are discarded without panicking.
	r.AgentInvoked("pm", "track_tasks")
	r.AgentSucceeded("pm", "track_tasks", 1.5)
	r.AgentFailed("pm", "track_tasks")
	r.WorkflowStarted("wf", 3)
	r.WorkflowCompleted("wf", true, 10.0, 0)
	r.ParallelCompleted(4, 2.0)
	r.CLICommand("run")
	r.CLIError("run")
}

func TestNewOTelRecorder(t *testing.T) {
	// Without a configured provider the global meter is a no-op, but
	// instrument creation must still succeed.
	r, err := NewOTelRecorder()
	if err != nil {
		t.Fatalf("NewOTelRecorder returned error: %v", err)
	}

	var _ Recorder = r

	r.AgentInvoked("pm", "track_tasks")
	r.AgentSucceeded("pm", "track_tasks", 0.5)
	r.AgentFailed("research", "analyze_document")
	r.WorkflowStarted("wf", 2)
	r.WorkflowCompleted("wf", false, 3.0, 1)
	r.ParallelCompleted(3, 1.0)
	r.CLICommand("workflow")
	r.CLIError("workflow")
}
