package reporter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/harrison/maestro/internal/filelock"
	"github.com/harrison/maestro/internal/models"
)

// MarkdownReport renders a workflow run as a Markdown document.
func MarkdownReport(result models.WorkflowResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Workflow Report: %s\n\n", result.WorkflowName)
	fmt.Fprintf(&sb, "- Steps completed: %d\n", result.StepsCompleted)
	fmt.Fprintf(&sb, "- Steps failed: %d\n", result.StepsFailed)
	fmt.Fprintf(&sb, "- Total duration: %.2fs\n", result.TotalDuration)
	fmt.Fprintf(&sb, "- Quality gates: %s\n\n", passFail(result.QualityGatesPassed))

	sb.WriteString("## Steps\n\n")
	sb.WriteString("| Agent | Action | Status | Duration | Error |\n")
	sb.WriteString("|-------|--------|--------|----------|-------|\n")
	for _, r := range result.Results {
		fmt.Fprintf(&sb, "| %s | %s | %s | %.2fs | %s |\n",
			r.Agent, r.Action, r.Status, r.DurationSeconds, r.Error)
	}

	return sb.String()
}

// WriteReport saves a workflow report to path. Markdown targets get the
// report verbatim; ".html" targets get it rendered through goldmark.
func WriteReport(path string, result models.WorkflowResult) error {
	report := MarkdownReport(result)

	if strings.EqualFold(filepath.Ext(path), ".html") {
		var buf bytes.Buffer
		if err := goldmark.New().Convert([]byte(report), &buf); err != nil {
			return fmt.Errorf("render report html: %w", err)
		}
		return filelock.LockAndWrite(path, buf.Bytes())
	}

	return filelock.LockAndWrite(path, []byte(report))
}
