package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "pydock.dev/pkg/pydock/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Output returns the writer container output is streamed to.
func (s *SimpleUI) Output() io.Writer {
	return s.cmd.OutOrStdout()
}

// DisplayStageStarted prints the stage being entered.
func (s *SimpleUI) DisplayStageStarted(ctx context.Context, stage Stage, detail string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if detail == "" {
		s.printf("==> %s\n", stage)
		return
	}

	s.printf("==> %s: %s\n", stage, detail)
}

// DisplayStageDone prints failures; successful stages stay quiet.
func (s *SimpleUI) DisplayStageDone(ctx context.Context, stage Stage, err error) {
	if ctx.Err() != nil || err == nil {
		return
	}

	s.printf("%s failed: %v\n", stage, err)
}

// DisplayArtifacts summarizes the files left on disk.
func (s *SimpleUI) DisplayArtifacts(ctx context.Context, artifacts m.Artifacts) {
	if err := ctx.Err(); err != nil {
		return
	}

	if artifacts.ManifestExists {
		s.printf("Manifest:   %s (%d dependencies)\n", artifacts.ManifestPath, len(artifacts.Dependencies))
	} else {
		s.printf("Manifest:   none (no external dependencies)\n")
	}

	s.printf("Descriptor: %s\n", artifacts.DescriptorPath)
}

// DisplayDependencies renders one table row per imported module.
func (s *SimpleUI) DisplayDependencies(ctx context.Context, files []m.FileDependencies) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderDependencyTable(files))

	return nil
}

func renderDependencyTable(files []m.FileDependencies) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Module", "Kind"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoMergeCells(true)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	external := 0
	modules := 0

	for _, file := range files {
		if len(file.Modules) == 0 {
			table.Append([]string{string(file.Path), "-", "-"})
			continue
		}

		for _, module := range file.Modules {
			table.Append([]string{string(file.Path), module.Name, string(module.Kind)})

			modules++

			if module.Kind == m.ModuleExternal {
				external++
			}
		}
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(files)),
		fmt.Sprintf("%d modules", modules),
		fmt.Sprintf("%d external", external),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayPlan prints the pending change for each artifact.
func (s *SimpleUI) DisplayPlan(ctx context.Context, diffs []m.ArtifactDiff) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, diff := range diffs {
		switch {
		case diff.Diff == "":
			s.printf("%s: up to date\n", diff.Path)
		case diff.Removed:
			s.printf("%s: would be removed\n%s", diff.Path, diff.Diff)
		default:
			s.printf("%s", diff.Diff)
		}
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
