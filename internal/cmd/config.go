package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrison/maestro/internal/config"
)

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after merging the file over built-in defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())
			a.recorder.CLICommand("config")

			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = DefaultConfigFile
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (%d agent(s) configured)\n", len(cfg.Agents))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a starter agents.yaml with example agents and default settings.
With --example-workflows, example workflow files are written alongside it.`,
		RunE: configInitCommand,
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	cmd.Flags().Bool("example-workflows", false, "Also write example workflow files")

	return cmd
}

func configInitCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = DefaultConfigFile
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(configPath); err == nil && !force {
		return config.NewConfigError(configPath, "file already exists (use --force to overwrite)", nil)
	}

	if err := config.SaveConfig(config.DefaultConfig(), configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)

	if examples, _ := cmd.Flags().GetBool("example-workflows"); examples {
		dir := filepath.Join(filepath.Dir(configPath), "workflows")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create workflows directory: %w", err)
		}
		for name, content := range exampleWorkflows {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		}
	}
	return nil
}

var exampleWorkflows = map[string]string{
	"release-check.yaml": `name: release-check
description: Index the repository, analyze the docs, and gate on quality.
steps:
  - name: index
    agent: index
    action: index_repository
  - name: analyze
    agent: research
    action: analyze_document
    depends_on: [index]
  - name: report
    agent: pm
    action: generate_report
    depends_on: [analyze]
    on_error: continue
quality_gates:
  max_fixmes: 10
  min_documentation_score: 0.7
`,
	"daily-standup.yaml": `name: daily-standup
description: Collect task status and summarize it.
steps:
  - name: status
    agent: pm
    action: track_tasks
  - name: summary
    agent: research
    action: summarize
    depends_on: [status]
    timeout: 120
`,
}
