// Package executor contains the execution core: single-task execution with
// timeout enforcement, bounded-concurrency parallel coordination, and the
// dependency-aware sequential workflow engine.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/maestro/internal/agent"
	"github.com/harrison/maestro/internal/metrics"
	"github.com/harrison/maestro/internal/models"
)

// DefaultTimeout bounds a single invocation when neither the caller nor the
// configuration supplies one.
const DefaultTimeout = 60 * time.Second

// Logger receives execution progress messages. It is optional; a nil logger
// disables logging.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Executor runs single agent invocations with timing and timeout
// enforcement. All failure modes are translated into an error-status
// AgentResult; Execute never returns an error to the caller.
type Executor struct {
	bridge         agent.Bridge
	metrics        metrics.Recorder
	log            Logger
	defaultTimeout time.Duration
	agentTimeouts  map[string]time.Duration
}

// NewExecutor constructs an Executor. recorder may be nil to disable
// metrics, log may be nil to disable logging, and a non-positive
// defaultTimeout falls back to DefaultTimeout.
func NewExecutor(bridge agent.Bridge, recorder metrics.Recorder, log Logger, defaultTimeout time.Duration) *Executor {
	if recorder == nil {
		recorder = metrics.NewNopRecorder()
	}
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Executor{
		bridge:         bridge,
		metrics:        recorder,
		log:            log,
		defaultTimeout: defaultTimeout,
	}
}

// WithAgentTimeouts sets per-agent default timeouts. They are consulted when
// the caller passes no explicit timeout, before falling back to the executor
// default. Returns the executor for chaining.
func (e *Executor) WithAgentTimeouts(timeouts map[string]time.Duration) *Executor {
	e.agentTimeouts = timeouts
	return e
}

type invokeOutcome struct {
	resp *agent.Response
	err  error
}

// Execute runs one task through the invocation boundary. A non-positive
// timeout uses the executor default. The invocation runs on its own
// goroutine so a blocking agent cannot stall sibling tasks; on timeout the
// wait is abandoned and the context is cancelled, which kills a
// process-backed invocation best-effort but does not guarantee termination.
func (e *Executor) Execute(ctx context.Context, task models.Task, timeout time.Duration) models.AgentResult {
	start := time.Now()

	effective := timeout
	if effective <= 0 {
		effective = e.agentTimeouts[task.Agent]
	}
	if effective <= 0 {
		effective = e.defaultTimeout
	}

	e.metrics.AgentInvoked(task.Agent, task.Action)
	if e.log != nil {
		e.log.Debugf("invoking %s.%s (timeout %s)", task.Agent, task.Action, effective)
	}

	invCtx, cancel := context.WithTimeout(ctx, effective)
	defer cancel()

	done := make(chan invokeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invokeOutcome{err: fmt.Errorf("agent panicked: %v", r)}
			}
		}()
		resp, err := e.bridge.Invoke(invCtx, task.Agent, task.Action, task.Params)
		done <- invokeOutcome{resp: resp, err: err}
	}()

	select {
	case out := <-done:
		return e.interpretOutcome(task, out, effective, start)

	case <-invCtx.Done():
		duration := time.Since(start).Seconds()
		e.metrics.AgentFailed(task.Agent, task.Action)

		msg := fmt.Sprintf("Timeout after %g seconds", effective.Seconds())
		if !errors.Is(invCtx.Err(), context.DeadlineExceeded) {
			msg = invCtx.Err().Error()
		}
		if e.log != nil {
			e.log.Warnf("%s.%s: %s", task.Agent, task.Action, msg)
		}
		return models.FailureResult(task.Agent, task.Action, msg, duration)
	}
}

// interpretOutcome translates an invocation outcome into an AgentResult.
func (e *Executor) interpretOutcome(task models.Task, out invokeOutcome, effective time.Duration, start time.Time) models.AgentResult {
	duration := time.Since(start).Seconds()

	if out.err != nil {
		e.metrics.AgentFailed(task.Agent, task.Action)

		msg := out.err.Error()
		// The invocation may observe the deadline before our select does.
		if errors.Is(out.err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("Timeout after %g seconds", effective.Seconds())
		}
		if e.log != nil {
			e.log.Warnf("%s.%s failed: %s", task.Agent, task.Action, msg)
		}
		return models.FailureResult(task.Agent, task.Action, msg, duration)
	}

	if out.resp.Status == models.StatusError {
		e.metrics.AgentFailed(task.Agent, task.Action)

		msg := "Unknown error"
		if m, ok := out.resp.Data["error"].(string); ok && m != "" {
			msg = m
		}
		if e.log != nil {
			e.log.Warnf("%s.%s reported error: %s", task.Agent, task.Action, msg)
		}
		// An in-band error keeps the agent's returned data alongside the
		// extracted message.
		data := out.resp.Data
		if data == nil {
			data = map[string]interface{}{}
		}
		return models.AgentResult{
			Agent:           task.Agent,
			Action:          task.Action,
			Status:          models.StatusError,
			Data:            data,
			DurationSeconds: duration,
			Timestamp:       time.Now().Format(time.RFC3339),
			Error:           msg,
		}
	}

	e.metrics.AgentSucceeded(task.Agent, task.Action, duration)
	if e.log != nil {
		e.log.Debugf("%s.%s completed in %.2fs", task.Agent, task.Action, duration)
	}
	return models.SuccessResult(task.Agent, task.Action, out.resp.Data, duration)
}
