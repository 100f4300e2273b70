package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "maestro"

// OTelRecorder implements Recorder on OpenTelemetry metric instruments.
// Recording methods use a background context because the events are
// fire-and-forget and must outlive any per-task cancellation.
type OTelRecorder struct {
	agentInvocations metric.Int64Counter
	agentSuccesses   metric.Int64Counter
	agentErrors      metric.Int64Counter
	agentDuration    metric.Float64Histogram

	workflowsStarted    metric.Int64Counter
	workflowsSucceeded  metric.Int64Counter
	workflowsFailed     metric.Int64Counter
	workflowDuration    metric.Float64Histogram
	workflowStepsFailed metric.Int64Counter

	parallelBatches  metric.Int64Counter
	parallelDuration metric.Float64Histogram

	cliCommands metric.Int64Counter
	cliErrors   metric.Int64Counter
}

// NewOTelRecorder creates all metric instruments on the global meter
// provider. Call Setup first to install an exporting provider.
func NewOTelRecorder() (*OTelRecorder, error) {
	meter := otel.Meter(meterName)
	r := &OTelRecorder{}
	var err error

	if r.agentInvocations, err = meter.Int64Counter("maestro.agent.invocations",
		metric.WithDescription("Total agent invocations")); err != nil {
		return nil, err
	}
	if r.agentSuccesses, err = meter.Int64Counter("maestro.agent.invocations.success",
		metric.WithDescription("Successful agent invocations")); err != nil {
		return nil, err
	}
	if r.agentErrors, err = meter.Int64Counter("maestro.agent.invocations.error",
		metric.WithDescription("Failed agent invocations")); err != nil {
		return nil, err
	}
	if r.agentDuration, err = meter.Float64Histogram("maestro.agent.duration_seconds",
		metric.WithDescription("Agent execution duration in seconds")); err != nil {
		return nil, err
	}

	if r.workflowsStarted, err = meter.Int64Counter("maestro.workflows.started",
		metric.WithDescription("Workflow runs started")); err != nil {
		return nil, err
	}
	if r.workflowsSucceeded, err = meter.Int64Counter("maestro.workflows.succeeded",
		metric.WithDescription("Workflow runs that completed with no failed steps and passing gates")); err != nil {
		return nil, err
	}
	if r.workflowsFailed, err = meter.Int64Counter("maestro.workflows.failed",
		metric.WithDescription("Workflow runs that failed")); err != nil {
		return nil, err
	}
	if r.workflowDuration, err = meter.Float64Histogram("maestro.workflow.duration_seconds",
		metric.WithDescription("Workflow run duration in seconds")); err != nil {
		return nil, err
	}
	if r.workflowStepsFailed, err = meter.Int64Counter("maestro.workflow.steps.failed",
		metric.WithDescription("Failed steps across workflow runs")); err != nil {
		return nil, err
	}

	if r.parallelBatches, err = meter.Int64Counter("maestro.parallel.batches",
		metric.WithDescription("Completed parallel batches")); err != nil {
		return nil, err
	}
	if r.parallelDuration, err = meter.Float64Histogram("maestro.parallel.duration_seconds",
		metric.WithDescription("Parallel batch wall-clock duration in seconds")); err != nil {
		return nil, err
	}

	if r.cliCommands, err = meter.Int64Counter("maestro.cli.commands",
		metric.WithDescription("CLI commands executed")); err != nil {
		return nil, err
	}
	if r.cliErrors, err = meter.Int64Counter("maestro.cli.errors",
		metric.WithDescription("CLI command errors")); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *OTelRecorder) AgentInvoked(agent, action string) {
	r.agentInvocations.Add(context.Background(), 1, agentAttrs(agent, action))
}

func (r *OTelRecorder) AgentSucceeded(agent, action string, durationSeconds float64) {
	ctx := context.Background()
	r.agentSuccesses.Add(ctx, 1, agentAttrs(agent, action))
	r.agentDuration.Record(ctx, durationSeconds, agentAttrs(agent, action))
}

func (r *OTelRecorder) AgentFailed(agent, action string) {
	r.agentErrors.Add(context.Background(), 1, agentAttrs(agent, action))
}

func (r *OTelRecorder) WorkflowStarted(workflow string, totalSteps int) {
	r.workflowsStarted.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("workflow", workflow),
		attribute.Int("total_steps", totalSteps),
	))
}

func (r *OTelRecorder) WorkflowCompleted(workflow string, success bool, durationSeconds float64, failedSteps int) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("workflow", workflow))
	if success {
		r.workflowsSucceeded.Add(ctx, 1, attrs)
	} else {
		r.workflowsFailed.Add(ctx, 1, attrs)
	}
	r.workflowDuration.Record(ctx, durationSeconds, attrs)
	if failedSteps > 0 {
		r.workflowStepsFailed.Add(ctx, int64(failedSteps), attrs)
	}
}

func (r *OTelRecorder) ParallelCompleted(maxWorkers int, durationSeconds float64) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.Int("max_workers", maxWorkers))
	r.parallelBatches.Add(ctx, 1, attrs)
	r.parallelDuration.Record(ctx, durationSeconds, attrs)
}

func (r *OTelRecorder) CLICommand(command string) {
	r.cliCommands.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
}

func (r *OTelRecorder) CLIError(command string) {
	r.cliErrors.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
}

func agentAttrs(agent, action string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("action", action),
	)
}
