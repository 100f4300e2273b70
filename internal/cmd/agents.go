package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewAgentsCommand creates the agents command
func NewAgentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List configured agents",
		Long: `List the agents declared in the configuration file, their commands,
and whether they are enabled. With --verbose, capabilities are shown too.`,
		RunE: agentsCommand,
	}
}

func agentsCommand(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())
	a.recorder.CLICommand("agents")

	tab := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if a.verbose {
		fmt.Fprintln(tab, "AGENT\tNAME\tENABLED\tCOMMAND\tCAPABILITIES")
	} else {
		fmt.Fprintln(tab, "AGENT\tNAME\tENABLED\tCOMMAND")
	}

	for _, key := range a.cfg.AgentNames() {
		ac := a.cfg.Agents[key]
		if a.verbose {
			fmt.Fprintf(tab, "%s\t%s\t%t\t%s\t%s\n",
				key, ac.Name, ac.Enabled, ac.Command, strings.Join(ac.Capabilities, ", "))
		} else {
			fmt.Fprintf(tab, "%s\t%s\t%t\t%s\n", key, ac.Name, ac.Enabled, ac.Command)
		}
	}
	return tab.Flush()
}
