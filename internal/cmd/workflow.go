package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/config"
	"github.com/harrison/maestro/internal/filelock"
	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/reporter"
)

// NewWorkflowCommand creates the workflow command
func NewWorkflowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow <file>",
		Short: "Execute a multi-step workflow",
		Long: `Execute the steps of a workflow file in declared order.

Workflow files are YAML (or Markdown with yaml step blocks). Steps may
declare dependencies on earlier steps; a step whose dependency failed aborts
the workflow. Steps with on_error: continue record their failure and let
execution proceed, unless --strict is set.

Exit codes: 0 when every step succeeds and quality gates pass, 1 when the
workflow fails or the file is invalid, 2 on unexpected errors.

Examples:
  maestro workflow release.yaml
  maestro workflow release.yaml --strict
  maestro workflow release.yaml --dry-run
  maestro workflow release.md --report report.html`,
		Args: cobra.ExactArgs(1),
		RunE: workflowCommand,
	}

	cmd.Flags().Bool("strict", false, "Abort on any step failure regardless of step policy")
	cmd.Flags().Bool("continue-on-error", false, "Record step failures and keep going")
	cmd.Flags().Bool("dry-run", false, "Validate and preview the workflow without executing")
	cmd.Flags().String("output", "", "Write the workflow result JSON to this file")
	cmd.Flags().String("report", "", "Write a run report (.md or .html) to this file")

	return cmd
}

func workflowCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())
	a.recorder.CLICommand("workflow")

	strict, _ := cmd.Flags().GetBool("strict")
	continueOnError, _ := cmd.Flags().GetBool("continue-on-error")
	if strict && continueOnError {
		a.recorder.CLIError("workflow")
		return fmt.Errorf("cannot use both --strict and --continue-on-error")
	}

	wf, err := config.LoadWorkflow(args[0])
	if err != nil {
		a.recorder.CLIError("workflow")
		return err
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		a.rep.DryRun(models.NewDryRunResult(wf))
		return nil
	}

	if continueOnError {
		for i := range wf.Steps {
			wf.Steps[i].OnError = models.OnErrorContinue
		}
	}

	a.log.Infof("executing workflow %q (%d steps)", wf.Name, len(wf.Steps))
	result, err := a.coordinator(0).ExecuteWorkflow(cmd.Context(), wf, strict)
	if err != nil {
		a.recorder.CLIError("workflow")
		a.rep.Error(err.Error())
		recordWorkflowAbort(cmd, a, wf.Name)
		return err
	}

	a.rep.WorkflowResult(result)

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		if err := filelock.WriteJSON(out, result); err != nil {
			return err
		}
		a.log.Infof("workflow result written to %s", out)
	}
	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := reporter.WriteReport(reportPath, result); err != nil {
			return err
		}
		a.log.Infof("report written to %s", reportPath)
	}
	if a.cfg.Output.SaveResults {
		path, err := reporter.SaveWorkflowResult(a.cfg.Output.ResultsDir, result)
		if err != nil {
			return err
		}
		a.log.Debugf("workflow result saved to %s", path)
	}
	if err := recordWorkflowHistory(cmd, a, result); err != nil {
		return err
	}

	switch {
	case result.StepsFailed > 0:
		a.recorder.CLIError("workflow")
		return &FailureError{Message: fmt.Sprintf("workflow %q: %d step(s) failed", result.WorkflowName, result.StepsFailed)}
	case !result.QualityGatesPassed:
		a.recorder.CLIError("workflow")
		return &FailureError{Message: fmt.Sprintf("workflow %q: quality gates failed", result.WorkflowName)}
	}
	return nil
}
