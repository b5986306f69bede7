// Package cmd provides the root command and CLI setup for pydock.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pydock.dev/pkg/pydock/internal/adapter"
	"pydock.dev/pkg/pydock/internal/controller"
	"pydock.dev/pkg/pydock/internal/domain"
	m "pydock.dev/pkg/pydock/internal/model"
)

var fsAdapter adapter.SourceFSAdapter

// workflow overrides the configured workflow when set (tests inject mocks here).
var workflow domain.Workflow

// outputDirFlag is the build context directory the artifacts are written to.
var outputDirFlag string

var verboseFlag bool
var stdlibVersionFlag string
var stdlibFileFlag string
var containerBinaryFlag string

func init() {
	configureRootFlags(rootCmd)

	fsAdapter = adapter.NewLocalSourceFSAdapter()
}

const rootLongDescription = `pydock reads a Python entry file, finds the modules it imports and writes
a requirements.txt with the external ones plus a Dockerfile that runs the
entry file inside a python:3.5 image.

Imports are found with a line heuristic, not a Python parser: multi-line
import statements and imports behind comments are not recognized.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pydock",
		Short: "Containerize a Python script from its imports",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"directory the manifest and descriptor are written to (build context)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&verboseFlag, verboseFlagName, viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&stdlibVersionFlag, stdlibVersionFlagName, viper.GetString(stdlibVersionKey), "Python version whose standard library index is used")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(stdlibVersionFlagName), stdlibVersionKey)

	cmd.PersistentFlags().StringVar(&stdlibFileFlag, stdlibFileFlagName, viper.GetString(stdlibFileKey), "YAML file with standard library module lists per version")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(stdlibFileFlagName), stdlibFileKey)

	cmd.PersistentFlags().StringVar(&containerBinaryFlag, containerBinaryFlagName, viper.GetString(containerBinaryKey), "container runtime executable")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(containerBinaryFlagName), containerBinaryKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// workflowFor returns the injected workflow, or wires one from the current configuration.
func workflowFor(cmd *cobra.Command) domain.Workflow {
	if workflow != nil {
		return workflow
	}

	ui := controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))

	return domain.NewWorkflow(
		fsAdapter,
		adapter.NewLocalStdlibIndexAdapter(viper.GetString(stdlibFileKey)),
		adapter.NewLocalContainerRuntime(viper.GetString(containerBinaryKey)),
		ui,
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
