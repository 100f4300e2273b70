package models

import "time"

// Execution status constants shared by agent and workflow results.
const (
	StatusSuccess = "success" // Invocation completed and reported success
	StatusError   = "error"   // Invocation failed, timed out, or reported an error
)

// AgentResult is the outcome of executing a single task. It is constructed
// once by the executor and never mutated; aggregates hold it by value.
// Status and Error are coupled: Error is non-empty iff Status is "error".
type AgentResult struct {
	Agent           string                 `json:"agent" yaml:"agent"`
	Action          string                 `json:"action" yaml:"action"`
	Status          string                 `json:"status" yaml:"status"`
	Data            map[string]interface{} `json:"data" yaml:"data"`
	DurationSeconds float64                `json:"duration_seconds" yaml:"duration_seconds"`
	Timestamp       string                 `json:"timestamp" yaml:"timestamp"`
	Error           string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// SuccessResult creates a success result carrying the agent's returned data.
func SuccessResult(agent, action string, data map[string]interface{}, durationSeconds float64) AgentResult {
	if data == nil {
		data = map[string]interface{}{}
	}
	return AgentResult{
		Agent:           agent,
		Action:          action,
		Status:          StatusSuccess,
		Data:            data,
		DurationSeconds: durationSeconds,
		Timestamp:       time.Now().Format(time.RFC3339),
	}
}

// FailureResult creates an error result with empty data.
func FailureResult(agent, action, errMsg string, durationSeconds float64) AgentResult {
	return AgentResult{
		Agent:           agent,
		Action:          action,
		Status:          StatusError,
		Data:            map[string]interface{}{},
		DurationSeconds: durationSeconds,
		Timestamp:       time.Now().Format(time.RFC3339),
		Error:           errMsg,
	}
}

// Failed reports whether the result carries an error status.
func (r AgentResult) Failed() bool {
	return r.Status == StatusError
}

// WorkflowResult is the aggregate outcome of one workflow run. It is built
// from the recorded step results after the last step completes.
type WorkflowResult struct {
	WorkflowName       string                 `json:"workflow_name" yaml:"workflow_name"`
	StepsCompleted     int                    `json:"steps_completed" yaml:"steps_completed"`
	StepsFailed        int                    `json:"steps_failed" yaml:"steps_failed"`
	TotalDuration      float64                `json:"total_duration" yaml:"total_duration"`
	Results            []AgentResult          `json:"results" yaml:"results"`
	QualityGatesPassed bool                   `json:"quality_gates_passed" yaml:"quality_gates_passed"`
	Summary            map[string]interface{} `json:"summary" yaml:"summary"`
}

// NewWorkflowResult aggregates individual step results into a workflow
// result. Total duration is the sum of step durations, not wall clock.
func NewWorkflowResult(workflowName string, results []AgentResult, qualityGatesPassed bool) WorkflowResult {
	completed := 0
	failed := 0
	totalDuration := 0.0
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			completed++
		case StatusError:
			failed++
		}
		totalDuration += r.DurationSeconds
	}

	successRate := 0.0
	if len(results) > 0 {
		successRate = float64(completed) / float64(len(results))
	}

	if results == nil {
		results = []AgentResult{}
	}

	return WorkflowResult{
		WorkflowName:       workflowName,
		StepsCompleted:     completed,
		StepsFailed:        failed,
		TotalDuration:      totalDuration,
		Results:            results,
		QualityGatesPassed: qualityGatesPassed,
		Summary: map[string]interface{}{
			"total_steps":  len(results),
			"success_rate": successRate,
		},
	}
}

// DryRunStep is one entry in a dry-run preview of a workflow.
type DryRunStep struct {
	Order     int                    `json:"order" yaml:"order"`
	Name      string                 `json:"name" yaml:"name"`
	Agent     string                 `json:"agent" yaml:"agent"`
	Action    string                 `json:"action" yaml:"action"`
	Params    map[string]interface{} `json:"params" yaml:"params"`
	DependsOn []string               `json:"depends_on" yaml:"depends_on"`
	Timeout   int                    `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	OnError   string                 `json:"on_error" yaml:"on_error"`
}

// DryRunResult is the outcome of validating a workflow without executing it.
type DryRunResult struct {
	WorkflowName        string                 `json:"workflow_name" yaml:"workflow_name"`
	WorkflowDescription string                 `json:"workflow_description" yaml:"workflow_description"`
	TotalSteps          int                    `json:"total_steps" yaml:"total_steps"`
	Steps               []DryRunStep           `json:"steps" yaml:"steps"`
	ValidationErrors    []string               `json:"validation_errors" yaml:"validation_errors"`
	QualityGates        map[string]interface{} `json:"quality_gates" yaml:"quality_gates"`
	IsValid             bool                   `json:"is_valid" yaml:"is_valid"`
}

// NewDryRunResult builds a dry-run preview for a workflow, including any
// validation errors found by construction-time dependency checks.
func NewDryRunResult(wf Workflow) DryRunResult {
	steps := make([]DryRunStep, 0, len(wf.Steps))
	for i, step := range wf.Steps {
		deps := step.DependsOn
		if deps == nil {
			deps = []string{}
		}
		params := step.Params
		if params == nil {
			params = map[string]interface{}{}
		}
		steps = append(steps, DryRunStep{
			Order:     i + 1,
			Name:      step.Name,
			Agent:     step.Agent,
			Action:    step.Action,
			Params:    params,
			DependsOn: deps,
			Timeout:   step.Timeout,
			OnError:   step.ErrorPolicy(),
		})
	}

	validationErrors := wf.ValidateDependencies()

	gates := map[string]interface{}{}
	if wf.QualityGates.MaxFixmes != nil {
		gates["max_fixmes"] = *wf.QualityGates.MaxFixmes
	}
	if wf.QualityGates.MinDocumentationScore != nil {
		gates["min_documentation_score"] = *wf.QualityGates.MinDocumentationScore
	}
	if wf.QualityGates.MaxDeadCodePercent != nil {
		gates["max_dead_code_percent"] = *wf.QualityGates.MaxDeadCodePercent
	}

	return DryRunResult{
		WorkflowName:        wf.Name,
		WorkflowDescription: wf.Description,
		TotalSteps:          len(wf.Steps),
		Steps:               steps,
		ValidationErrors:    validationErrors,
		QualityGates:        gates,
		IsValid:             len(validationErrors) == 0,
	}
}
