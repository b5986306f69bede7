package cmd

import (
	"github.com/spf13/cobra"
)

const planLongDescription = `Show how generate would change requirements.txt and Dockerfile.

Nothing is written: both artifacts are synthesized in memory and diffed
against the files in the output directory.

` + sourceFlagsHelp

// planCmd represents the plan command.
var planCmd = newPlanCmd()

func newPlanCmd() *cobra.Command {
	flags := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "plan -s SRC -f FILE [-a ARG]... [-r] [-- ARGS...]",
		Short: "Preview artifact changes as a unified diff",
		Long:  planLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflowFor(cmd).Plan(cmd.Context(), flags.generateArgs(args))
		},
	}

	flags.register(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(planCmd)
}
