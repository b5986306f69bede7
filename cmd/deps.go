package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pydock.dev/pkg/pydock/internal/domain"
)

var depsParallelFlag int

// depsCmd represents the deps command.
var depsCmd = newDepsCmd()

func newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps FILE...",
		Short: "List the imported modules of Python files",
		Long: `List every module imported by each file and whether it belongs to the
standard library of the configured Python version or is an external package.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflowFor(cmd).Deps(cmd.Context(), domain.DepsArgs{
				Paths:          parsePaths(args),
				RuntimeVersion: viper.GetString(stdlibVersionKey),
				Threads:        viper.GetInt(depsParallelKey),
			})
		},
	}

	cmd.Flags().IntVarP(&depsParallelFlag, depsParallelFlagName, "p", viper.GetInt(depsParallelKey), "number of files scanned in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(depsParallelFlagName), depsParallelKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
