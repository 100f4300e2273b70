package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/maestro/internal/config"
	"github.com/harrison/maestro/internal/executor"
	"github.com/harrison/maestro/internal/models"
)

// execute runs the root command with the given args and returns captured
// stdout. Log lines go to stderr and are discarded here so format assertions
// see only reporter output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// missingConfig returns a config path that does not exist, so commands run
// on built-in defaults regardless of the working directory.
func missingConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "agents.yaml")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"failure", &FailureError{Message: "2 task(s) failed"}, 1},
		{"workflow error", executor.NewWorkflowError("wf", "step", "dependency failed"), 1},
		{"config error", config.NewConfigError("agents.yaml", "bad", nil), 1},
		{"validation error", config.NewValidationError("wf", []string{"cycle"}), 1},
		{"wrapped workflow error", fmt.Errorf("outer: %w", executor.NewWorkflowError("wf", "s", "m")), 1},
		{"unexpected", errors.New("disk on fire"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestRunCommand_MockSuccess(t *testing.T) {
	out, err := execute(t, "run", "pm", "track_tasks",
		"--mock", "--format", "json", "--config", missingConfig(t))

	require.NoError(t, err)

	var result models.AgentResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "pm", result.Agent)
	assert.Equal(t, "track_tasks", result.Action)
	assert.Equal(t, models.StatusSuccess, result.Status)
}

func TestRunCommand_DefaultAction(t *testing.T) {
	out, err := execute(t, "run", "research",
		"--mock", "--format", "json", "--config", missingConfig(t))

	require.NoError(t, err)

	var result models.AgentResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "analyze_document", result.Action)
}

func TestRunCommand_UnknownAgentNoAction(t *testing.T) {
	_, err := execute(t, "run", "mystery",
		"--mock", "--config", missingConfig(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no default action")
}

func TestRunCommand_InvalidParams(t *testing.T) {
	_, err := execute(t, "run", "pm", "track_tasks",
		"--mock", "--params", "{not json", "--config", missingConfig(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--params")
}

func TestRunCommand_OutputFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "result.json")

	_, err := execute(t, "run", "pm", "track_tasks",
		"--mock", "--output", outPath, "--config", missingConfig(t))
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result models.AgentResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "pm", result.Agent)
}

func TestParallelCommand_AgentsList(t *testing.T) {
	out, err := execute(t, "parallel",
		"--agents", "pm,research.summarize,index",
		"--mock", "--format", "json", "--config", missingConfig(t))

	require.NoError(t, err)

	var results []models.AgentResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	// Results come back in task order.
	assert.Equal(t, "pm", results[0].Agent)
	assert.Equal(t, "summarize", results[1].Action)
	assert.Equal(t, "index", results[2].Agent)
}

func TestParallelCommand_UnknownAgentFallsBackToRun(t *testing.T) {
	out, err := execute(t, "parallel",
		"--agents", "linter",
		"--mock", "--format", "json", "--config", missingConfig(t))

	require.NoError(t, err)

	var results []models.AgentResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "linter", results[0].Agent)
	assert.Equal(t, "run", results[0].Action)
}

func TestParallelCommand_NoTasks(t *testing.T) {
	_, err := execute(t, "parallel", "--mock", "--config", missingConfig(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tasks")
}

func TestWorkflowCommand_MockSuccess(t *testing.T) {
	wfPath := filepath.Join(t.TempDir(), "wf.yaml")
	require.NoError(t, os.WriteFile(wfPath, []byte(`
name: two-steps
steps:
  - name: a
    agent: pm
    action: track_tasks
  - name: b
    agent: research
    action: analyze_document
    depends_on: [a]
`), 0644))
	outPath := filepath.Join(t.TempDir(), "wf-result.json")

	_, err := execute(t, "workflow", wfPath,
		"--mock", "--format", "json", "--output", outPath, "--config", missingConfig(t))
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result models.WorkflowResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "two-steps", result.WorkflowName)
	assert.Equal(t, 2, result.StepsCompleted)
	assert.Equal(t, 0, result.StepsFailed)
	assert.True(t, result.QualityGatesPassed)
}

func TestWorkflowCommand_DryRun(t *testing.T) {
	wfPath := filepath.Join(t.TempDir(), "wf.yaml")
	require.NoError(t, os.WriteFile(wfPath, []byte(`
name: preview
steps:
  - name: only
    agent: pm
    action: track_tasks
`), 0644))

	out, err := execute(t, "workflow", wfPath,
		"--dry-run", "--mock", "--format", "table", "--config", missingConfig(t))

	require.NoError(t, err)
	assert.Contains(t, out, "preview")
	assert.Contains(t, out, "Workflow is valid")
}

func TestWorkflowCommand_InvalidFileExitsOne(t *testing.T) {
	wfPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(wfPath, []byte(`
steps:
  - name: a
    agent: pm
    action: track_tasks
    depends_on: [ghost]
`), 0644))

	_, err := execute(t, "workflow", wfPath, "--mock", "--config", missingConfig(t))

	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestWorkflowCommand_ConflictingFlags(t *testing.T) {
	wfPath := filepath.Join(t.TempDir(), "wf.yaml")
	require.NoError(t, os.WriteFile(wfPath, []byte("steps:\n  - name: a\n    agent: pm\n    action: track_tasks\n"), 0644))

	_, err := execute(t, "workflow", wfPath,
		"--strict", "--continue-on-error", "--mock", "--config", missingConfig(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot use both")
}

func TestAgentsCommand(t *testing.T) {
	out, err := execute(t, "agents", "--config", missingConfig(t))

	require.NoError(t, err)
	assert.Contains(t, out, "pm")
	assert.Contains(t, out, "research")
	assert.Contains(t, out, "index")
	assert.Contains(t, out, "ENABLED")
}

func TestConfigInitShowValidate(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "agents.yaml")

	out, err := execute(t, "config", "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	// A second init without --force refuses to clobber the file.
	_, err = execute(t, "config", "init", "--config", configPath)
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	out, err = execute(t, "config", "validate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	out, err = execute(t, "config", "show", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "max_parallel_workers")
}

func TestConfigInit_ExampleWorkflows(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "agents.yaml")

	_, err := execute(t, "config", "init", "--example-workflows", "--config", configPath)
	require.NoError(t, err)

	wf, err := config.LoadWorkflow(filepath.Join(dir, "workflows", "release-check.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "release-check", wf.Name)
	require.NotNil(t, wf.QualityGates.MaxFixmes)
}

func TestHistoryCommand_Empty(t *testing.T) {
	t.Setenv("MAESTRO_HOME", t.TempDir())

	out, err := execute(t, "history", "--config", missingConfig(t))

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestHistoryCommand_ListsRecordedRuns(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MAESTRO_HOME", home)

	configPath := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("settings:\n  history_enabled: true\n"), 0644))

	_, err := execute(t, "run", "pm", "track_tasks", "--mock", "--config", configPath)
	require.NoError(t, err)

	out, err := execute(t, "history", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "pm.track_tasks")
	assert.Contains(t, out, "task")
}
