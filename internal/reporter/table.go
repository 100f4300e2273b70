package reporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/harrison/maestro/internal/models"
)

// TableReporter writes aligned plain-text tables. No colors, so the output
// is stable inside CI logs and pagers.
type TableReporter struct {
	w io.Writer
}

func NewTableReporter(w io.Writer) *TableReporter {
	return &TableReporter{w: w}
}

func (r *TableReporter) newTab() *tabwriter.Writer {
	return tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
}

func (r *TableReporter) Result(result models.AgentResult) {
	r.Results([]models.AgentResult{result})
}

func (r *TableReporter) Results(results []models.AgentResult) {
	tab := r.newTab()
	fmt.Fprintln(tab, "AGENT\tACTION\tSTATUS\tDURATION\tERROR")
	for _, result := range results {
		fmt.Fprintf(tab, "%s\t%s\t%s\t%.2fs\t%s\n",
			result.Agent, result.Action, result.Status, result.DurationSeconds, result.Error)
	}
	tab.Flush()
}

func (r *TableReporter) WorkflowResult(result models.WorkflowResult) {
	fmt.Fprintf(r.w, "Workflow: %s\n\n", result.WorkflowName)
	r.Results(result.Results)

	fmt.Fprintln(r.w)
	tab := r.newTab()
	fmt.Fprintf(tab, "Steps completed\t%d\n", result.StepsCompleted)
	fmt.Fprintf(tab, "Steps failed\t%d\n", result.StepsFailed)
	fmt.Fprintf(tab, "Total duration\t%.2fs\n", result.TotalDuration)
	fmt.Fprintf(tab, "Quality gates\t%s\n", passFail(result.QualityGatesPassed))
	tab.Flush()
}

func (r *TableReporter) DryRun(result models.DryRunResult) {
	fmt.Fprintf(r.w, "Dry run: %s\n\n", result.WorkflowName)

	tab := r.newTab()
	fmt.Fprintln(tab, "ORDER\tSTEP\tAGENT\tACTION\tDEPENDS ON\tON ERROR")
	for _, step := range result.Steps {
		fmt.Fprintf(tab, "%d\t%s\t%s\t%s\t%s\t%s\n",
			step.Order, step.Name, step.Agent, step.Action,
			strings.Join(step.DependsOn, ","), step.OnError)
	}
	tab.Flush()

	fmt.Fprintln(r.w)
	if result.IsValid {
		fmt.Fprintln(r.w, "Workflow is valid")
		return
	}
	fmt.Fprintln(r.w, "Workflow is invalid:")
	for _, problem := range result.ValidationErrors {
		fmt.Fprintf(r.w, "  - %s\n", problem)
	}
}

func (r *TableReporter) Error(msg string) {
	fmt.Fprintf(r.w, "Error: %s\n", msg)
}

func (r *TableReporter) Success(msg string) {
	fmt.Fprintln(r.w, msg)
}

func (r *TableReporter) Info(msg string) {
	fmt.Fprintln(r.w, msg)
}

func passFail(ok bool) string {
	if ok {
		return "passed"
	}
	return "failed"
}
