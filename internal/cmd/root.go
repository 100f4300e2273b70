package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/agent"
	"github.com/harrison/maestro/internal/config"
	"github.com/harrison/maestro/internal/executor"
	"github.com/harrison/maestro/internal/logger"
	"github.com/harrison/maestro/internal/metrics"
	"github.com/harrison/maestro/internal/reporter"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// DefaultConfigFile is the config file looked up when --config is not given.
const DefaultConfigFile = "agents.yaml"

// NewRootCommand creates and returns the root cobra command for maestro
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maestro",
		Short: "Multi-agent task orchestration CLI",
		Long: `Maestro dispatches tasks to configured agent processes and coordinates
their execution: single invocations, bounded parallel batches, and
dependency-aware workflows with quality gates.

Agents are external executables declared in agents.yaml. Each invocation
writes a JSON request on the agent's stdin and reads a JSON response from
its stdout.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: agents.yaml)")
	cmd.PersistentFlags().String("format", "", "Output format: rich, json, or table (default from config)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Show detailed execution information")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Only show errors")
	cmd.PersistentFlags().Bool("mock", false, "Use the mock agent bridge instead of spawning processes")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewParallelCommand())
	cmd.AddCommand(NewWorkflowCommand())
	cmd.AddCommand(NewAgentsCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// app bundles the collaborators every command needs. Everything is
// constructed per invocation and injected; there is no package-level state.
type app struct {
	cfg      *config.Config
	log      *logger.ConsoleLogger
	rep      reporter.Reporter
	recorder metrics.Recorder
	bridge   agent.Bridge
	verbose  bool
	shutdown metrics.ShutdownFunc
}

// buildApp assembles the shared collaborators from flags and configuration.
func buildApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = DefaultConfigFile
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	level := "info"
	if verbose || cfg.Output.Verbose {
		level = "debug"
	}
	if quiet {
		level = "error"
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	rep, err := reporter.New(format, cmd.OutOrStdout(), verbose || cfg.Output.Verbose)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      logger.New(cmd.ErrOrStderr(), level),
		rep:      rep,
		recorder: metrics.NewNopRecorder(),
		verbose:  verbose || cfg.Output.Verbose,
	}

	if cfg.Settings.MetricsEnabled {
		shutdown, err := metrics.Setup(cmd.Context(), "maestro", cfg.Settings.MetricsEndpoint)
		if err != nil {
			return nil, err
		}
		recorder, err := metrics.NewOTelRecorder()
		if err != nil {
			shutdown(context.Background())
			return nil, err
		}
		a.recorder = recorder
		a.shutdown = shutdown
	}

	if mock, _ := cmd.Flags().GetBool("mock"); mock {
		a.bridge = agent.NewMockBridge()
	} else {
		defs := make(map[string]agent.Definition, len(cfg.Agents))
		for key, ac := range cfg.Agents {
			defs[key] = agent.Definition{
				Name:    ac.Name,
				Enabled: ac.Enabled,
				Command: ac.Command,
				Env:     ac.Env,
			}
		}
		a.bridge = agent.NewProcessBridge(defs)
	}

	return a, nil
}

// close flushes the metrics pipeline if one was started.
func (a *app) close(ctx context.Context) {
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.log.Warnf("metrics shutdown: %v", err)
		}
	}
}

// executor builds a task executor bound to this app's collaborators.
// Agents with a configured timeout get it as their per-invocation default.
func (a *app) executor() *executor.Executor {
	timeouts := make(map[string]time.Duration, len(a.cfg.Agents))
	for name, ac := range a.cfg.Agents {
		if ac.Timeout > 0 {
			timeouts[name] = time.Duration(ac.Timeout) * time.Second
		}
	}
	return executor.NewExecutor(a.bridge, a.recorder, a.log, a.defaultTimeout()).
		WithAgentTimeouts(timeouts)
}

// coordinator builds a parallel coordinator with the given worker cap
// (0 = configured default).
func (a *app) coordinator(maxWorkers int) *executor.Coordinator {
	if maxWorkers <= 0 {
		maxWorkers = a.cfg.Settings.MaxParallelWorkers
	}
	return executor.NewCoordinator(a.executor(), maxWorkers, a.recorder, a.log)
}

func (a *app) defaultTimeout() time.Duration {
	return time.Duration(a.cfg.Settings.DefaultTimeout) * time.Second
}
