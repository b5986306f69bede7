package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pydock.dev/pkg/pydock/internal/domain"
	m "pydock.dev/pkg/pydock/internal/model"
)

const (
	srcFlagName        = "src"
	fileFlagName       = "file"
	argsFlagName       = "args"
	regenerateFlagName = "regenerate"
)

const sourceFlagsHelp = `The entry file is given relative to the source directory. Arguments for the
script can be passed with repeated -a flags or after a "--" separator:

  pydock generate -s ./app -f main.py -r -- --port 8080`

const generateLongDescription = `Write requirements.txt and Dockerfile for a Python entry file.

With -r the manifest is rebuilt from the imports of the entry file; without it
an existing requirements.txt in the output directory is used as-is.

` + sourceFlagsHelp

// sourceFlags are the flags shared by every command that synthesizes artifacts.
type sourceFlags struct {
	src        string
	file       string
	args       []string
	regenerate bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.src, srcFlagName, "s", "", "path to the source code directory")
	cmd.Flags().StringVarP(&f.file, fileFlagName, "f", "", "name of the main Python file in the source directory, including the extension")
	cmd.Flags().StringArrayVarP(&f.args, argsFlagName, "a", nil, "argument passed to the Python file (can be repeated)")
	cmd.Flags().BoolVarP(&f.regenerate, regenerateFlagName, "r", false, "regenerate requirements.txt from the imports instead of reusing it")
}

// generateArgs turns the parsed flags and the positional arguments into workflow input.
func (f *sourceFlags) generateArgs(positional []string) domain.GenerateArgs {
	mode := m.ManifestReuse
	if f.regenerate {
		mode = m.ManifestRegenerate
	}

	args := make([]string, 0, len(f.args)+len(positional))
	args = append(args, f.args...)
	args = append(args, positional...)

	return domain.GenerateArgs{
		SourceDir:      m.Path(f.src),
		EntryFile:      m.Path(f.file),
		Args:           args,
		Mode:           mode,
		OutputDir:      m.Path(viper.GetString(outputFlagName)),
		RuntimeVersion: viper.GetString(stdlibVersionKey),
	}
}

// generateCmd represents the generate command.
var generateCmd = newGenerateCmd()

func newGenerateCmd() *cobra.Command {
	flags := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "generate -s SRC -f FILE [-a ARG]... [-r] [-- ARGS...]",
		Short: "Write the manifest and build descriptor",
		Long:  generateLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := workflowFor(cmd).Generate(cmd.Context(), flags.generateArgs(args))

			return err
		},
	}

	flags.register(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
