// Package controller provides output adapters for displaying pipeline progress and results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "pydock.dev/pkg/pydock/internal/model"
)

// Stage is one step of the pydock pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageValidate   Stage = "validate"
	StageExtract    Stage = "extract"
	StageClassify   Stage = "classify"
	StageManifest   Stage = "manifest"
	StageDescriptor Stage = "descriptor"
	StageBuild      Stage = "build"
	StageRun        Stage = "run"
	StageRemove     Stage = "remove"
)

// UI defines how the workflow reports progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	Output() io.Writer
	DisplayStageStarted(ctx context.Context, stage Stage, detail string)
	DisplayStageDone(ctx context.Context, stage Stage, err error)
	DisplayArtifacts(ctx context.Context, artifacts m.Artifacts)
	DisplayDependencies(ctx context.Context, files []m.FileDependencies) error
	DisplayPlan(ctx context.Context, diffs []m.ArtifactDiff) error
}

// NewUI picks the TUI for terminals and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
