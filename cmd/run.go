package cmd

import (
	"github.com/spf13/cobra"

	"pydock.dev/pkg/pydock/internal/domain"
)

const runLongDescription = `Write the artifacts, then build the image, run it once and remove it.

The image is named after the entry file (main.py becomes main.py-image) and
is removed even when the script exits with an error.

` + sourceFlagsHelp

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	flags := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "run -s SRC -f FILE [-a ARG]... [-r] [-- ARGS...]",
		Short: "Build and run the script in a container",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflowFor(cmd).Run(cmd.Context(), domain.RunArgs{
				GenerateArgs: flags.generateArgs(args),
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}
