package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/config"
	"github.com/harrison/maestro/internal/history"
	"github.com/harrison/maestro/internal/models"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded in the history database, newest first.

History is opt-in: enable it with settings.history_enabled in the config
file. Runs are recorded after each run, parallel, and workflow command.`,
		RunE: historyCommand,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	cmd.Flags().Int("prune", 0, "Delete runs older than this many days before listing")

	return cmd
}

func historyCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())
	a.recorder.CLICommand("history")

	store, err := openHistory(a)
	if err != nil {
		return err
	}
	defer store.Close()

	if days, _ := cmd.Flags().GetInt("prune"); days > 0 {
		deleted, err := store.Prune(cmd.Context(), days)
		if err != nil {
			return err
		}
		if deleted > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s) older than %d days\n\n", deleted, days)
		}
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	tab := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tab, "WHEN\tKIND\tNAME\tSTATUS\tSTEPS\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(tab, "%s\t%s\t%s\t%s\t%d/%d\t%.2fs\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Kind, run.Name, run.Status,
			run.StepsCompleted, run.StepsCompleted+run.StepsFailed,
			run.DurationSeconds)
	}
	return tab.Flush()
}

// openHistory opens the configured history database regardless of the
// enabled flag, so the history command can always inspect past runs.
func openHistory(a *app) (*history.Store, error) {
	path, err := config.HistoryDBPath(a.cfg.Settings.HistoryPath)
	if err != nil {
		return nil, err
	}
	return history.NewStore(path)
}

// recordTaskHistory writes task results to the history store when enabled.
func recordTaskHistory(cmd *cobra.Command, a *app, results []models.AgentResult) error {
	if !a.cfg.Settings.HistoryEnabled {
		return nil
	}
	store, err := openHistory(a)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, result := range results {
		if _, err := store.RecordTaskRun(cmd.Context(), result); err != nil {
			return err
		}
	}
	return nil
}

// recordWorkflowHistory writes a workflow result to the history store when
// enabled.
func recordWorkflowHistory(cmd *cobra.Command, a *app, result models.WorkflowResult) error {
	if !a.cfg.Settings.HistoryEnabled {
		return nil
	}
	store, err := openHistory(a)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.RecordWorkflowRun(cmd.Context(), result)
	return err
}

// recordWorkflowAbort records an aborted workflow as an error run. Abort
// failures are logged, not returned: the abort error itself matters more.
func recordWorkflowAbort(cmd *cobra.Command, a *app, name string) {
	if !a.cfg.Settings.HistoryEnabled {
		return
	}
	store, err := openHistory(a)
	if err != nil {
		a.log.Warnf("history: %v", err)
		return
	}
	defer store.Close()

	if _, err := store.RecordRun(cmd.Context(), history.Run{
		Kind:   history.KindWorkflow,
		Name:   name,
		Status: models.StatusError,
	}); err != nil {
		a.log.Warnf("history: %v", err)
	}
}
