package cmd

import (
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"pydock.dev/pkg/pydock/internal/adapter"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version, the Go version and the bundled Python standard library indexes.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("version: unknown")
			} else {
				cmd.Println("tool version\t", info.Main.Version)
				cmd.Println("go version\t", info.GoVersion)
			}

			cmd.Println("stdlib indexes\t", strings.Join(adapter.BundledStdlibVersions(), ", "))
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
