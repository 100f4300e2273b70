package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/filelock"
	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/reporter"
)

// defaultActions maps well-known agents to the action used when none is
// given on the command line.
var defaultActions = map[string]string{
	"pm":       "track_tasks",
	"research": "analyze_document",
	"index":    "index_repository",
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <agent> [action]",
		Short: "Execute a single agent task",
		Long: `Execute one action on one agent and report the result.

When action is omitted, the agent's default action is used (pm: track_tasks,
research: analyze_document, index: index_repository).

Examples:
  maestro run pm track_tasks
  maestro run research analyze_document --params '{"document": "notes.md"}'
  maestro run index --path ./src --timeout 120
  maestro run pm --output result.json --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCommand,
	}

	cmd.Flags().String("params", "", "Task parameters as a JSON object")
	cmd.Flags().String("path", "", "Shorthand for adding a \"path\" parameter")
	cmd.Flags().Int("timeout", 0, "Task timeout in seconds (0 = config default)")
	cmd.Flags().String("output", "", "Write the result JSON to this file")

	return cmd
}

func runCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())
	a.recorder.CLICommand("run")

	agentName := args[0]
	action := ""
	if len(args) == 2 {
		action = args[1]
	} else if def, ok := defaultActions[agentName]; ok {
		action = def
	}
	if action == "" {
		a.recorder.CLIError("run")
		return fmt.Errorf("no action given and agent %q has no default action", agentName)
	}

	params, err := parseParams(cmd)
	if err != nil {
		a.recorder.CLIError("run")
		return err
	}

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	timeout := time.Duration(timeoutSecs) * time.Second

	task := models.NewTask(agentName, action, params)
	a.log.Infof("running %s.%s", agentName, action)
	result := a.executor().Execute(cmd.Context(), task, timeout)

	a.rep.Result(result)

	if err := saveAndRecord(cmd, a, []models.AgentResult{result}); err != nil {
		return err
	}

	if result.Failed() {
		a.recorder.CLIError("run")
		return &FailureError{Message: fmt.Sprintf("%s.%s failed: %s", agentName, action, result.Error)}
	}
	return nil
}

// parseParams merges --params JSON with the --path shorthand.
func parseParams(cmd *cobra.Command) (map[string]interface{}, error) {
	params := map[string]interface{}{}

	if raw, _ := cmd.Flags().GetString("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, fmt.Errorf("invalid --params JSON: %w", err)
		}
	}
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		params["path"] = path
	}
	return params, nil
}

// saveAndRecord applies the shared post-run side effects: --output, the
// configured results directory, and the opt-in run history.
func saveAndRecord(cmd *cobra.Command, a *app, results []models.AgentResult) error {
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		var payload interface{} = results
		if len(results) == 1 {
			payload = results[0]
		}
		if err := filelock.WriteJSON(out, payload); err != nil {
			return err
		}
		a.log.Infof("results written to %s", out)
	}

	if a.cfg.Output.SaveResults {
		path, err := reporter.SaveResults(a.cfg.Output.ResultsDir, results)
		if err != nil {
			return err
		}
		a.log.Debugf("results saved to %s", path)
	}

	return recordTaskHistory(cmd, a, results)
}
