package executor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/maestro/internal/agent"
	"github.com/harrison/maestro/internal/models"
)

// recordingMetrics counts recorder events for assertions.
type recordingMetrics struct {
	mu                 sync.Mutex
	invoked            int
	succeeded          int
	failed             int
	batches            int
	lastMaxWorkers     int
	workflowsStarted   int
	workflowsCompleted int
	lastSuccess        bool
	lastFailedSteps    int
}

func (m *recordingMetrics) AgentInvoked(agent, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoked++
}

func (m *recordingMetrics) AgentSucceeded(agent, action string, durationSeconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.succeeded++
}

func (m *recordingMetrics) AgentFailed(agent, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
}

func (m *recordingMetrics) WorkflowStarted(workflow string, totalSteps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflowsStarted++
}

func (m *recordingMetrics) WorkflowCompleted(workflow string, success bool, durationSeconds float64, failedSteps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflowsCompleted++
	m.lastSuccess = success
	m.lastFailedSteps = failedSteps
}

func (m *recordingMetrics) ParallelCompleted(maxWorkers int, durationSeconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.lastMaxWorkers = maxWorkers
}

func (m *recordingMetrics) CLICommand(command string) {}
func (m *recordingMetrics) CLIError(command string)   {}

// slowBridge blocks for a fixed delay, honoring context cancellation like a
// process-backed bridge would.
type slowBridge struct {
	delay time.Duration
}

func (b slowBridge) Invoke(ctx context.Context, agentName, action string, params map[string]interface{}) (*agent.Response, error) {
	select {
	case <-time.After(b.delay):
		return &agent.Response{Status: "success", Data: map[string]interface{}{}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// panicBridge panics on every invocation.
type panicBridge struct{}

func (panicBridge) Invoke(ctx context.Context, agentName, action string, params map[string]interface{}) (*agent.Response, error) {
	panic("bridge exploded")
}

func TestExecutor_Success(t *testing.T) {
	bridge := agent.NewMockBridge()
	bridge.Respond("pm.track_tasks", &agent.Response{
		Status: "success",
		Data:   map[string]interface{}{"tasks": 7},
	})
	rec := &recordingMetrics{}
	exec := NewExecutor(bridge, rec, nil, time.Second)

	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 0)

	if result.Status != models.StatusSuccess {
		t.Fatalf("status = %q, want success (error: %s)", result.Status, result.Error)
	}
	if result.Data["tasks"] != 7 {
		t.Errorf("data = %v, want tasks=7", result.Data)
	}
	if result.Error != "" {
		t.Errorf("expected empty error, got %q", result.Error)
	}
	if result.DurationSeconds < 0 {
		t.Errorf("duration must be non-negative, got %v", result.DurationSeconds)
	}
	if rec.invoked != 1 || rec.succeeded != 1 || rec.failed != 0 {
		t.Errorf("metrics invoked/succeeded/failed = %d/%d/%d, want 1/1/0",
			rec.invoked, rec.succeeded, rec.failed)
	}
}

func TestExecutor_InBandError(t *testing.T) {
	bridge := agent.NewMockBridge()
	bridge.Respond("pm.track_tasks", &agent.Response{
		Status: "error",
		Data:   map[string]interface{}{"error": "tracker offline", "attempted": true},
	})
	rec := &recordingMetrics{}
	exec := NewExecutor(bridge, rec, nil, time.Second)

	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 0)

	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if result.Error != "tracker offline" {
		t.Errorf("error = %q, want extracted message", result.Error)
	}
	// The agent's returned data is retained on in-band errors.
	if result.Data["attempted"] != true {
		t.Errorf("expected returned data to be retained, got %v", result.Data)
	}
	if rec.failed != 1 {
		t.Errorf("expected one failure metric, got %d", rec.failed)
	}
}

func TestExecutor_InBandErrorWithoutMessage(t *testing.T) {
	bridge := agent.NewMockBridge()
	bridge.Respond("pm.track_tasks", &agent.Response{
		Status: "error",
		Data:   map[string]interface{}{},
	})
	exec := NewExecutor(bridge, nil, nil, time.Second)

	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 0)

	if result.Error != "Unknown error" {
		t.Errorf("error = %q, want fallback message", result.Error)
	}
}

func TestExecutor_TransportError(t *testing.T) {
	bridge := agent.NewMockBridge()
	bridge.Fail("pm.track_tasks", context.DeadlineExceeded)
	exec := NewExecutor(bridge, nil, nil, 3*time.Second)

	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 0)

	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "3") {
		t.Errorf("deadline errors should surface the timeout value, got %q", result.Error)
	}
	if len(result.Data) != 0 {
		t.Errorf("expected empty data on transport error, got %v", result.Data)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	rec := &recordingMetrics{}
	exec := NewExecutor(slowBridge{delay: time.Second}, rec, nil, time.Minute)

	start := time.Now()
	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 50*time.Millisecond)
	elapsed := time.Since(start)

	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "Timeout after") || !strings.Contains(result.Error, "0.05") {
		t.Errorf("error = %q, want timeout message with the numeric timeout", result.Error)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("executor waited %v past its timeout", elapsed)
	}
	if rec.failed != 1 {
		t.Errorf("expected one failure metric, got %d", rec.failed)
	}
}

func TestExecutor_DefaultTimeout(t *testing.T) {
	exec := NewExecutor(slowBridge{delay: time.Second}, nil, nil, 50*time.Millisecond)

	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 0)

	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "Timeout after") {
		t.Errorf("error = %q, want timeout message", result.Error)
	}
}

func TestExecutor_AgentTimeoutDefault(t *testing.T) {
	exec := NewExecutor(slowBridge{delay: time.Second}, nil, nil, time.Minute).
		WithAgentTimeouts(map[string]time.Duration{"pm": 50 * time.Millisecond})

	// No explicit timeout: the agent's configured default applies, not the
	// executor-wide one.
	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 0)

	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "Timeout after") || !strings.Contains(result.Error, "0.05") {
		t.Errorf("error = %q, want timeout message with the agent timeout", result.Error)
	}

	// An explicit timeout still wins over the agent default.
	result = exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 2*time.Second)
	if result.Status != models.StatusSuccess {
		t.Fatalf("status = %q, want success (error: %s)", result.Status, result.Error)
	}

	// Agents without a configured timeout keep the executor default.
	exec2 := NewExecutor(slowBridge{delay: time.Second}, nil, nil, 50*time.Millisecond).
		WithAgentTimeouts(map[string]time.Duration{"pm": time.Minute})
	result = exec2.Execute(context.Background(), models.NewTask("research", "summarize", nil), 0)
	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
}

func TestExecutor_BridgePanic(t *testing.T) {
	exec := NewExecutor(panicBridge{}, nil, nil, time.Second)

	result := exec.Execute(context.Background(), models.NewTask("pm", "track_tasks", nil), 0)

	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "bridge exploded") {
		t.Errorf("error = %q, want panic message", result.Error)
	}
}

func TestExecutor_ParentCancellation(t *testing.T) {
	exec := NewExecutor(slowBridge{delay: time.Second}, nil, nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result := exec.Execute(ctx, models.NewTask("pm", "track_tasks", nil), time.Minute)

	if result.Status != models.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if strings.Contains(result.Error, "Timeout after") {
		t.Errorf("parent cancellation should not be reported as a timeout, got %q", result.Error)
	}
}
