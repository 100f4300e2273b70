package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/maestro/internal/metrics"
	"github.com/harrison/maestro/internal/models"
)

// Coordinator fans independent tasks out through the Executor under a
// concurrency cap and runs workflows as dependency-aware sequential step
// lists. One Coordinator may be reused across runs; all mutable state is
// scoped to a single call.
type Coordinator struct {
	executor   *Executor
	maxWorkers int
	metrics    metrics.Recorder
	log        Logger
}

// NewCoordinator constructs a Coordinator. maxWorkers below 1 is clamped to
// 1; recorder may be nil to disable metrics; log may be nil.
func NewCoordinator(exec *Executor, maxWorkers int, recorder metrics.Recorder, log Logger) *Coordinator {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if recorder == nil {
		recorder = metrics.NewNopRecorder()
	}
	return &Coordinator{
		executor:   exec,
		maxWorkers: maxWorkers,
		metrics:    recorder,
		log:        log,
	}
}

// ExecuteParallel runs all tasks concurrently with at most maxWorkers
// invocations in flight at any instant. The returned slice is in input
// order with exactly one result per task; individual failures never affect
// siblings. An empty task list returns immediately with no batch metric.
func (c *Coordinator) ExecuteParallel(ctx context.Context, tasks []models.Task) []models.AgentResult {
	if len(tasks) == 0 {
		return []models.AgentResult{}
	}

	start := time.Now()
	if c.log != nil {
		c.log.Infof("executing %d task(s) with %d worker(s)", len(tasks), c.maxWorkers)
	}

	// All tasks are submitted up front; the semaphore only bounds how many
	// are in flight at once. Writing by index preserves input order.
	semaphore := make(chan struct{}, c.maxWorkers)
	results := make([]models.AgentResult, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task models.Task) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = c.executor.Execute(ctx, task, 0)
		}(i, task)
	}
	wg.Wait()

	duration := time.Since(start).Seconds()
	c.metrics.ParallelCompleted(c.maxWorkers, duration)
	if c.log != nil {
		c.log.Infof("parallel batch completed in %.2fs", duration)
	}

	return results
}

// ExecuteWorkflow runs the workflow's steps strictly in declared order.
// A step executes only after all of its declared dependencies have already
// run and succeeded; a missing or failed dependency aborts the whole run
// with a *WorkflowError and no WorkflowResult. A step failure aborts the
// run when strict is set or the step's error policy is "fail"; with policy
// "continue" the failure is recorded and execution proceeds. Quality gates
// are evaluated over the full result list only when every step has been
// processed without an abort.
func (c *Coordinator) ExecuteWorkflow(ctx context.Context, wf models.Workflow, strict bool) (models.WorkflowResult, error) {
	start := time.Now()

	completed := make(map[string]models.AgentResult, len(wf.Steps))
	results := make([]models.AgentResult, 0, len(wf.Steps))

	c.metrics.WorkflowStarted(wf.Name, len(wf.Steps))
	if c.log != nil {
		c.log.Infof("workflow %q started: %d step(s)", wf.Name, len(wf.Steps))
	}

	for _, step := range wf.Steps {
		// A dependency must have executed already: execution order is the
		// declared order, so a forward reference is a structural error even
		// when the name exists later in the list.
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return models.WorkflowResult{}, NewWorkflowError(wf.Name, step.Name,
					fmt.Sprintf("dependency %q not completed", dep))
			}
		}
		// A failed dependency is fatal regardless of this step's own error
		// policy; the policy belongs to the step that would run.
		for _, dep := range step.DependsOn {
			if depResult := completed[dep]; depResult.Failed() {
				return models.WorkflowResult{}, NewWorkflowError(wf.Name, step.Name,
					fmt.Sprintf("dependency %q failed: %s", dep, depResult.Error))
			}
		}

		if c.log != nil {
			c.log.Infof("step %q: %s.%s", step.Name, step.Agent, step.Action)
		}

		result := c.runStep(ctx, step)
		results = append(results, result)
		completed[step.Name] = result

		if result.Failed() {
			if strict || step.ErrorPolicy() == models.OnErrorFail {
				duration := time.Since(start).Seconds()
				c.metrics.WorkflowCompleted(wf.Name, false, duration, 1)
				return models.WorkflowResult{}, NewWorkflowError(wf.Name, step.Name,
					fmt.Sprintf("step failed: %s", result.Error))
			}
			if c.log != nil {
				c.log.Warnf("step %q failed, continuing: %s", step.Name, result.Error)
			}
		}
	}

	gatesPassed := wf.QualityGates.Evaluate(results)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	duration := time.Since(start).Seconds()
	c.metrics.WorkflowCompleted(wf.Name, failed == 0 && gatesPassed, duration, failed)
	if c.log != nil {
		c.log.Infof("workflow %q completed in %.2fs: %d failed, gates passed: %v",
			wf.Name, duration, failed, gatesPassed)
	}

	return models.NewWorkflowResult(wf.Name, results, gatesPassed), nil
}

// runStep executes one step with its timeout override. The Executor already
// traps invocation failures; this recover is a last line of defense that
// turns a panic below the executor into a synthetic zero-duration error
// result, subject to the same escalation as any failed step.
func (c *Coordinator) runStep(ctx context.Context, step models.WorkflowStep) (result models.AgentResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.FailureResult(step.Agent, step.Action, fmt.Sprintf("%v", r), 0)
		}
	}()

	timeout := time.Duration(step.Timeout) * time.Second
	task := models.NewTask(step.Agent, step.Action, step.Params)
	return c.executor.Execute(ctx, task, timeout)
}
