package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/config"
	"github.com/harrison/maestro/internal/filelock"
	"github.com/harrison/maestro/internal/history"
	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/reporter"
)

// NewParallelCommand creates the parallel command
func NewParallelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parallel",
		Short: "Execute several tasks concurrently",
		Long: `Execute a batch of independent tasks with bounded concurrency.

Tasks come from --agents (a comma-separated list of agent or agent.action
entries) and/or from the steps of a --workflow file. Dependencies in the
workflow file are ignored here; use the workflow command for ordered runs.

Results are reported in task order regardless of completion order.

Examples:
  maestro parallel --agents pm,research,index
  maestro parallel --agents pm.track_tasks,research.summarize --max-workers 2
  maestro parallel --workflow release.yaml --path ./src`,
		RunE: parallelCommand,
	}

	cmd.Flags().String("agents", "", "Comma-separated agent or agent.action entries")
	cmd.Flags().String("workflow", "", "Take tasks from this workflow file's steps")
	cmd.Flags().Int("max-workers", 0, "Maximum concurrent tasks (0 = config default)")
	cmd.Flags().String("params", "", "Shared task parameters as a JSON object")
	cmd.Flags().String("path", "", "Shorthand for adding a \"path\" parameter")
	cmd.Flags().String("output", "", "Write the results JSON to this file")

	return cmd
}

func parallelCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())
	a.recorder.CLICommand("parallel")

	params, err := parseParams(cmd)
	if err != nil {
		a.recorder.CLIError("parallel")
		return err
	}

	tasks, err := collectParallelTasks(cmd, params)
	if err != nil {
		a.recorder.CLIError("parallel")
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no tasks given: use --agents and/or --workflow")
	}

	maxWorkers, _ := cmd.Flags().GetInt("max-workers")
	coord := a.coordinator(maxWorkers)

	a.log.Infof("running %d task(s)", len(tasks))
	results := coord.ExecuteParallel(cmd.Context(), tasks)

	a.rep.Results(results)

	failed := 0
	totalDuration := 0.0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
		totalDuration += r.DurationSeconds
	}

	if err := saveParallelResults(cmd, a, results); err != nil {
		return err
	}
	if err := recordParallelHistory(cmd, a, results, failed, totalDuration); err != nil {
		return err
	}
	if failed > 0 {
		a.recorder.CLIError("parallel")
		return &FailureError{Message: fmt.Sprintf("%d of %d task(s) failed", failed, len(results))}
	}
	return nil
}

// saveParallelResults applies --output and the configured results directory.
func saveParallelResults(cmd *cobra.Command, a *app, results []models.AgentResult) error {
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		if err := filelock.WriteJSON(out, results); err != nil {
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
	return nil
}

// recordParallelHistory records the batch as one history row.
func recordParallelHistory(cmd *cobra.Command, a *app, results []models.AgentResult, failed int, totalDuration float64) error {
	if !a.cfg.Settings.HistoryEnabled {
		return nil
	}
	store, err := openHistory(a)
	if err != nil {
		return err
	}
	defer store.Close()

	status := models.StatusSuccess
	if failed > 0 {
		status = models.StatusError
	}
	_, err = store.RecordRun(cmd.Context(), history.Run{
		Kind:            history.KindParallel,
		Name:            fmt.Sprintf("batch of %d", len(results)),
		Status:          status,
		StepsCompleted:  len(results) - failed,
		StepsFailed:     failed,
		DurationSeconds: totalDuration,
	})
	return err
}

// collectParallelTasks builds the task list from --agents entries and the
// steps of an optional --workflow file.
func collectParallelTasks(cmd *cobra.Command, params map[string]interface{}) ([]models.Task, error) {
	var tasks []models.Task

	if csv, _ := cmd.Flags().GetString("agents"); csv != "" {
		for _, entry := range strings.Split(csv, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			agentName, action, found := strings.Cut(entry, ".")
			if !found {
				// Agents without a well-known default fall back to "run".
				if action = defaultActions[agentName]; action == "" {
					action = "run"
				}
			}
			if action == "" {
				return nil, fmt.Errorf("entry %q has an empty action", entry)
			}
			tasks = append(tasks, models.NewTask(agentName, action, params))
		}
	}

	if wfPath, _ := cmd.Flags().GetString("workflow"); wfPath != "" {
		wf, err := config.LoadWorkflow(wfPath)
		if err != nil {
			return nil, err
		}
		for _, step := range wf.Steps {
			stepParams := step.Params
			if len(params) > 0 {
				merged := make(map[string]interface{}, len(stepParams)+len(params))
				for k, v := range params {
					merged[k] = v
				}
				for k, v := range stepParams {
					merged[k] = v
				}
				stepParams = merged
			}
			tasks = append(tasks, models.NewTask(step.Agent, step.Action, stepParams))
		}
	}

	return tasks, nil
}
