// Package reporter renders execution results for humans and machines. Each
// output format implements Reporter; commands pick one from configuration and
// hand it every result they produce.
package reporter

import (
	"fmt"
	"io"

	"github.com/harrison/maestro/internal/models"
)

// Reporter presents results in one output format.
type Reporter interface {
	// Result presents a single agent result.
	Result(result models.AgentResult)

	// Results presents a parallel batch, in task order.
	Results(results []models.AgentResult)

	// WorkflowResult presents a completed workflow run.
	WorkflowResult(result models.WorkflowResult)

	// DryRun presents a workflow preview without execution.
	DryRun(result models.DryRunResult)

	// Error presents a failure message.
	Error(msg string)

	// Success presents a confirmation message.
	Success(msg string)

	// Info presents a neutral status message.
	Info(msg string)
}

// Formats accepted by New and the --format flag.
const (
	FormatRich  = "rich"
	FormatJSON  = "json"
	FormatTable = "table"
)

// New returns the reporter for the given format name.
func New(format string, w io.Writer, verbose bool) (Reporter, error) {
	switch format {
	case FormatRich, "":
		return NewConsoleReporter(w, verbose), nil
	case FormatJSON:
		return NewJSONReporter(w), nil
	case FormatTable:
		return NewTableReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected rich, json, or table)", format)
	}
}
