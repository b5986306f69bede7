package controller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "pydock.dev/pkg/pydock/internal/model"
)

func TestStageModel_Lifecycle(t *testing.T) {
	model := newStageModel()

	updated, cmd := model.Update(stageStartedMsg{stage: StageExtract, detail: "app/main.py"})
	assert.Nil(t, cmd)

	model = updated.(stageModel)
	require.Len(t, model.rows, 1)
	assert.Equal(t, stageRunning, model.rows[0].state)
	assert.Contains(t, model.View(), "extract")
	assert.Contains(t, model.View(), "app/main.py")

	updated, _ = model.Update(stageDoneMsg{stage: StageExtract})
	model = updated.(stageModel)
	assert.Equal(t, stageSucceeded, model.rows[0].state)
	assert.Contains(t, model.View(), "✓ extract")

	updated, _ = model.Update(stageStartedMsg{stage: StageClassify})
	model = updated.(stageModel)
	updated, _ = model.Update(stageDoneMsg{stage: StageClassify, err: errors.New("no index")})
	model = updated.(stageModel)
	assert.Equal(t, stageFailed, model.rows[1].state)
	assert.Contains(t, model.View(), "✗ classify: no index")
}

func TestStageModel_DoneMatchesLatestRunningRow(t *testing.T) {
	model := newStageModel()
	model.rows = []stageRow{
		{stage: StageRun, state: stageSucceeded},
		{stage: StageRun, state: stageRunning},
	}

	updated, _ := model.Update(stageDoneMsg{stage: StageRun})
	model = updated.(stageModel)

	assert.Equal(t, stageSucceeded, model.rows[1].state)
}

func TestStageModel_CloseQuits(t *testing.T) {
	model := newStageModel()
	model.rows = []stageRow{{stage: StageBuild, state: stageRunning}}

	updated, cmd := model.Update(closeMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	model = updated.(stageModel)
	assert.True(t, model.quitting)
	assert.Contains(t, model.View(), "• build")
}

func TestStageModel_SpinnerTick(t *testing.T) {
	model := newStageModel()
	require.NotNil(t, model.Init())

	updated, cmd := model.Update(spinner.TickMsg{ID: model.spinner.ID()})
	assert.NotNil(t, cmd)
	assert.IsType(t, stageModel{}, updated)
}

func TestTUI_StaticOutputWithoutProgram(t *testing.T) {
	var buf bytes.Buffer

	ui := NewTUI(&buf)
	ctx := context.Background()

	ui.DisplayStageStarted(ctx, StageRemove, "main.py-image")
	ui.DisplayStageDone(ctx, StageRemove, errors.New("in use"))
	ui.DisplayArtifacts(ctx, m.Artifacts{ManifestPath: "requirements.txt", DescriptorPath: "Dockerfile"})

	output := buf.String()
	assert.Contains(t, output, "remove")
	assert.Contains(t, output, "in use")
	assert.Contains(t, output, "Dockerfile")
	assert.Same(t, &buf, ui.Output())
}

func TestTUI_StartAndClose(t *testing.T) {
	var buf bytes.Buffer

	ui := NewTUI(&buf)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx))
	ui.DisplayStageStarted(ctx, StageValidate, "")
	ui.DisplayStageDone(ctx, StageValidate, nil)
	ui.Close(ctx)

	assert.Nil(t, ui.program)

	// A second Close is a no-op.
	ui.Close(ctx)
}

func TestTUI_DisplayPlan(t *testing.T) {
	var buf bytes.Buffer

	ui := NewTUI(&buf)

	err := ui.DisplayPlan(context.Background(), []m.ArtifactDiff{
		{Path: "Dockerfile"},
		{Path: "requirements.txt", Diff: "@@ -1 +0,0 @@\n-requests\n", Removed: true},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Dockerfile up to date")
	assert.Contains(t, buf.String(), "requirements.txt would be removed")
	assert.Contains(t, buf.String(), "-requests")
}

func TestColorizeDiff_KeepsLines(t *testing.T) {
	diff := "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n context\n"

	colored := colorizeDiff(diff)

	assert.Equal(t, strings.Count(diff, "\n"), strings.Count(colored, "\n"))
	for _, fragment := range []string{"-old", "+new", " context", "@@ -1 +1 @@"} {
		assert.Contains(t, colored, fragment)
	}
}
