package models

import "fmt"

// Error policy constants for workflow steps.
const (
	OnErrorFail     = "fail"     // A step failure aborts the workflow
	OnErrorContinue = "continue" // A step failure is recorded and execution proceeds
)

// WorkflowStep is one named step in a workflow definition. Steps are created
// from a static definition and never mutated during execution. DependsOn
// holds step names, not references; the engine resolves them at run time.
type WorkflowStep struct {
	Name      string                 `json:"name" yaml:"name"`
	Agent     string                 `json:"agent" yaml:"agent"`
	Action    string                 `json:"action" yaml:"action"`
	Params    map[string]interface{} `json:"params" yaml:"params"`
	OnError   string                 `json:"on_error,omitempty" yaml:"on_error"`
	DependsOn []string               `json:"depends_on,omitempty" yaml:"depends_on"`
	Timeout   int                    `json:"timeout,omitempty" yaml:"timeout"` // seconds; 0 = engine default
}

// ErrorPolicy returns the step's error policy, defaulting to "fail".
func (s WorkflowStep) ErrorPolicy() string {
	if s.OnError == "" {
		return OnErrorFail
	}
	return s.OnError
}

// QualityGates holds optional aggregate thresholds checked against every
// step result's data after a workflow completes. A nil field means the gate
// is not configured. A result missing the gate's data key passes that gate.
type QualityGates struct {
	MaxFixmes             *int     `json:"max_fixmes,omitempty" yaml:"max_fixmes"`
	MinDocumentationScore *float64 `json:"min_documentation_score,omitempty" yaml:"min_documentation_score"`
	MaxDeadCodePercent    *float64 `json:"max_dead_code_percent,omitempty" yaml:"max_dead_code_percent"`
}

// Gate data keys expected inside AgentResult.Data.
const (
	gateKeyFixmes   = "fixme_count"
	gateKeyDocScore = "documentation_score"
	gateKeyDeadCode = "dead_code_percent"
)

// Evaluate checks every configured gate against every result. Any single
// violation fails the whole set; no gates configured passes vacuously.
func (g QualityGates) Evaluate(results []AgentResult) bool {
	if g.MaxFixmes != nil {
		for _, r := range results {
			if v, ok := numericValue(r.Data[gateKeyFixmes]); ok && v > float64(*g.MaxFixmes) {
				return false
			}
		}
	}

	if g.MinDocumentationScore != nil {
		for _, r := range results {
			if v, ok := numericValue(r.Data[gateKeyDocScore]); ok && v < *g.MinDocumentationScore {
				return false
			}
		}
	}

	if g.MaxDeadCodePercent != nil {
		for _, r := range results {
			if v, ok := numericValue(r.Data[gateKeyDeadCode]); ok && v > *g.MaxDeadCodePercent {
				return false
			}
		}
	}

	return true
}

// numericValue coerces the numeric types produced by JSON and YAML decoding.
// Non-numeric values are ignored, matching the missing-key behavior.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Workflow is a complete workflow definition. Steps execute in declared
// order; the engine never reorders by dependency graph.
type Workflow struct {
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description,omitempty" yaml:"description"`
	Steps        []WorkflowStep `json:"steps" yaml:"steps"`
	QualityGates QualityGates   `json:"quality_gates,omitempty" yaml:"quality_gates"`
}

// Step returns the step with the given name, or nil if absent.
func (w *Workflow) Step(name string) *WorkflowStep {
	for i := range w.Steps {
		if w.Steps[i].Name == name {
			return &w.Steps[i]
		}
	}
	return nil
}

// ValidateDependencies checks referential integrity of the workflow
// definition: duplicate step names, dependencies on undeclared steps,
// self-dependencies, and dependency cycles. It returns one message per
// problem so callers can report all of them at once.
func (w *Workflow) ValidateDependencies() []string {
	var errs []string

	names := make(map[string]bool, len(w.Steps))
	for _, step := range w.Steps {
		if names[step.Name] {
			errs = append(errs, fmt.Sprintf("duplicate step name '%s'", step.Name))
		}
		names[step.Name] = true
	}

	for _, step := range w.Steps {
		for _, dep := range step.DependsOn {
			if dep == step.Name {
				errs = append(errs, fmt.Sprintf("step '%s' depends on itself", step.Name))
				continue
			}
			if !names[dep] {
				errs = append(errs, fmt.Sprintf("step '%s' depends on non-existent step '%s'", step.Name, dep))
			}
		}
	}

	if hasCyclicDependencies(w.Steps) {
		errs = append(errs, "workflow contains a dependency cycle")
	}

	return errs
}

// hasCyclicDependencies detects circular dependencies between steps using
// DFS with color marking (white=unvisited, gray=visiting, black=visited).
func hasCyclicDependencies(steps []WorkflowStep) bool {
	graph := make(map[string][]string, len(steps))
	known := make(map[string]bool, len(steps))

	for _, step := range steps {
		known[step.Name] = true
		graph[step.Name] = nil
	}

	for _, step := range steps {
		for _, dep := range step.DependsOn {
			// Self-dependencies are reported separately; keeping the edge
			// here would count the same problem twice.
			if known[dep] && dep != step.Name {
				graph[dep] = append(graph[dep], step.Name)
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)

	colors := make(map[string]int, len(known))

	var dfs func(string) bool
	dfs = func(node string) bool {
		colors[node] = gray
		for _, next := range graph[node] {
			if colors[next] == gray {
				return true
			}
			if colors[next] == white && dfs(next) {
				return true
			}
		}
		colors[node] = black
		return false
	}

	for name := range known {
		if colors[name] == white && dfs(name) {
			return true
		}
	}
	return false
}
