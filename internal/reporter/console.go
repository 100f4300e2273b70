package reporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/harrison/maestro/internal/models"
)

// ConsoleReporter writes colored, human-oriented output. Colors degrade to
// plain text automatically when the writer is not a terminal.
type ConsoleReporter struct {
	w       io.Writer
	verbose bool

	green  *color.Color
	red    *color.Color
	cyan   *color.Color
	yellow *color.Color
}

func NewConsoleReporter(w io.Writer, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{
		w:       w,
		verbose: verbose,
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		cyan:    color.New(color.FgCyan, color.Bold),
		yellow:  color.New(color.FgYellow),
	}
}

func (r *ConsoleReporter) Result(result models.AgentResult) {
	if result.Failed() {
		r.red.Fprintf(r.w, "✗ %s.%s", result.Agent, result.Action)
		fmt.Fprintf(r.w, " (%.2fs): %s\n", result.DurationSeconds, result.Error)
	} else {
		r.green.Fprintf(r.w, "✓ %s.%s", result.Agent, result.Action)
		fmt.Fprintf(r.w, " (%.2fs)\n", result.DurationSeconds)
	}

	if r.verbose && len(result.Data) > 0 {
		keys := make([]string, 0, len(result.Data))
		for k := range result.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(r.w, "    %s: %v\n", k, result.Data[k])
		}
	}
}

func (r *ConsoleReporter) Results(results []models.AgentResult) {
	succeeded := 0
	for _, result := range results {
		r.Result(result)
		if !result.Failed() {
			succeeded++
		}
	}

	fmt.Fprintln(r.w)
	r.cyan.Fprintf(r.w, "Completed: ")
	fmt.Fprintf(r.w, "%d/%d succeeded\n", succeeded, len(results))
}

func (r *ConsoleReporter) WorkflowResult(result models.WorkflowResult) {
	r.cyan.Fprintf(r.w, "\n=== Workflow: %s ===\n\n", result.WorkflowName)

	for _, stepResult := range result.Results {
		r.Result(stepResult)
	}

	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "Steps completed: ")
	r.green.Fprintf(r.w, "%d\n", result.StepsCompleted)
	fmt.Fprintf(r.w, "Steps failed: ")
	if result.StepsFailed > 0 {
		r.red.Fprintf(r.w, "%d\n", result.StepsFailed)
	} else {
		fmt.Fprintf(r.w, "%d\n", result.StepsFailed)
	}
	fmt.Fprintf(r.w, "Total duration: %.2fs\n", result.TotalDuration)

	fmt.Fprintf(r.w, "Quality gates: ")
	if result.QualityGatesPassed {
		r.green.Fprintln(r.w, "passed")
	} else {
		r.red.Fprintln(r.w, "failed")
	}
}

func (r *ConsoleReporter) DryRun(result models.DryRunResult) {
	r.cyan.Fprintf(r.w, "\n=== Dry run: %s ===\n\n", result.WorkflowName)

	for _, step := range result.Steps {
		fmt.Fprintf(r.w, "%d. %s — %s.%s", step.Order, step.Name, step.Agent, step.Action)
		if len(step.DependsOn) > 0 {
			fmt.Fprintf(r.w, " (after %v)", step.DependsOn)
		}
		fmt.Fprintln(r.w)
	}

	fmt.Fprintln(r.w)
	if result.IsValid {
		r.green.Fprintln(r.w, "Workflow is valid")
	} else {
		r.red.Fprintln(r.w, "Workflow is invalid:")
		for _, problem := range result.ValidationErrors {
			fmt.Fprintf(r.w, "  - %s\n", problem)
		}
	}
}

func (r *ConsoleReporter) Error(msg string) {
	r.red.Fprintf(r.w, "Error: ")
	fmt.Fprintln(r.w, msg)
}

func (r *ConsoleReporter) Success(msg string) {
	r.green.Fprintf(r.w, "✓ ")
	fmt.Fprintln(r.w, msg)
}

func (r *ConsoleReporter) Info(msg string) {
	fmt.Fprintln(r.w, msg)
}
