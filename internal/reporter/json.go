package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harrison/maestro/internal/models"
)

// JSONReporter writes each result as one indented JSON document, suitable
// for piping into jq or another tool.
type JSONReporter struct {
	w io.Writer
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

func (r *JSONReporter) emit(v interface{}) {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(r.w, `{"status":"error","error":%q}`+"\n", err.Error())
	}
}

func (r *JSONReporter) Result(result models.AgentResult) {
	r.emit(result)
}

func (r *JSONReporter) Results(results []models.AgentResult) {
	r.emit(results)
}

func (r *JSONReporter) WorkflowResult(result models.WorkflowResult) {
	r.emit(result)
}

func (r *JSONReporter) DryRun(result models.DryRunResult) {
	r.emit(result)
}

func (r *JSONReporter) Error(msg string) {
	r.emit(map[string]string{"status": "error", "error": msg})
}

func (r *JSONReporter) Success(msg string) {
	r.emit(map[string]string{"status": "success", "message": msg})
}

func (r *JSONReporter) Info(msg string) {
	r.emit(map[string]string{"status": "info", "message": msg})
}
