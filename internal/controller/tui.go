package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "pydock.dev/pkg/pydock/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

// TUI implements UI using Bubble Tea for live stage progress.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress program in the background.
func (t *TUI) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(newStageModel(),
		tea.WithOutput(t.output),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Debug("Progress program stopped", "error", err)
		}
	}(t.program, t.done)

	return nil
}

// Close stops the progress program and waits for its final frame.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(closeMsg{})
	<-done
}

// Output returns the terminal writer.
func (t *TUI) Output() io.Writer {
	return t.output
}

// DisplayStageStarted marks stage as running.
func (t *TUI) DisplayStageStarted(ctx context.Context, stage Stage, detail string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if t.send(stageStartedMsg{stage: stage, detail: detail}) {
		return
	}

	t.printf("%s %s\n", titleStyle.Render("▸ "+string(stage)), faintStyle.Render(detail))
}

// DisplayStageDone marks stage as finished.
func (t *TUI) DisplayStageDone(ctx context.Context, stage Stage, err error) {
	if ctx.Err() != nil {
		return
	}

	if t.send(stageDoneMsg{stage: stage, err: err}) {
		return
	}

	if err != nil {
		t.printf("%s\n", failedStyle.Render(fmt.Sprintf("✗ %s: %v", stage, err)))
	}
}

// DisplayArtifacts summarizes the files left on disk.
func (t *TUI) DisplayArtifacts(ctx context.Context, artifacts m.Artifacts) {
	if err := ctx.Err(); err != nil {
		return
	}

	manifest := faintStyle.Render("none (no external dependencies)")
	if artifacts.ManifestExists {
		manifest = fmt.Sprintf("%s %s", artifacts.ManifestPath,
			faintStyle.Render(fmt.Sprintf("(%d dependencies)", len(artifacts.Dependencies))))
	}

	t.printf("%s %s\n", titleStyle.Render("Manifest:  "), manifest)
	t.printf("%s %s\n", titleStyle.Render("Descriptor:"), artifacts.DescriptorPath)
}

// DisplayDependencies renders the dependency table under a styled title.
func (t *TUI) DisplayDependencies(ctx context.Context, files []m.FileDependencies) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.printf("%s\n\n%s", titleStyle.Render("Imported modules"), renderDependencyTable(files))

	return nil
}

// DisplayPlan prints colored unified diffs.
func (t *TUI) DisplayPlan(ctx context.Context, diffs []m.ArtifactDiff) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, diff := range diffs {
		if diff.Diff == "" {
			t.printf("%s %s\n", doneStyle.Render("✓"), faintStyle.Render(string(diff.Path)+" up to date"))
			continue
		}

		if diff.Removed {
			t.printf("%s\n", failedStyle.Render(string(diff.Path)+" would be removed"))
		}

		t.printf("%s", colorizeDiff(diff.Diff))
	}

	return nil
}

func (t *TUI) send(msg tea.Msg) bool {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return false
	}

	program.Send(msg)

	return true
}

func (t *TUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(t.output, format, args...)
}

func colorizeDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")

	var b strings.Builder

	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		newline := line[len(body):]

		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			b.WriteString(titleStyle.Render(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(hunkStyle.Render(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(addedStyle.Render(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(removedStyle.Render(body))
		default:
			b.WriteString(body)
		}

		b.WriteString(newline)
	}

	return b.String()
}

type stageState int

const (
	stageRunning stageState = iota
	stageSucceeded
	stageFailed
)

type stageRow struct {
	stage  Stage
	detail string
	state  stageState
	err    error
}

type (
	stageStartedMsg struct {
		stage  Stage
		detail string
	}
	stageDoneMsg struct {
		stage Stage
		err   error
	}
	closeMsg struct{}
)

// stageModel is the Bubble Tea model listing pipeline stages.
type stageModel struct {
	rows     []stageRow
	spinner  spinner.Model
	quitting bool
}

func newStageModel() stageModel {
	return stageModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(titleStyle)),
	}
}

func (sm stageModel) Init() tea.Cmd {
	return sm.spinner.Tick
}

func (sm stageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageStartedMsg:
		sm.rows = append(sm.rows, stageRow{stage: msg.stage, detail: msg.detail, state: stageRunning})
		return sm, nil

	case stageDoneMsg:
		for i := len(sm.rows) - 1; i >= 0; i-- {
			if sm.rows[i].stage != msg.stage || sm.rows[i].state != stageRunning {
				continue
			}

			sm.rows[i].state = stageSucceeded
			sm.rows[i].err = msg.err

			if msg.err != nil {
				sm.rows[i].state = stageFailed
			}

			break
		}

		return sm, nil

	case closeMsg:
		sm.quitting = true
		return sm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		sm.spinner, cmd = sm.spinner.Update(msg)

		return sm, cmd
	}

	return sm, nil
}

func (sm stageModel) View() string {
	var b strings.Builder

	for _, row := range sm.rows {
		switch row.state {
		case stageRunning:
			if sm.quitting {
				b.WriteString(faintStyle.Render("• " + string(row.stage)))
			} else {
				b.WriteString(sm.spinner.View() + " " + string(row.stage))
			}
		case stageSucceeded:
			b.WriteString(doneStyle.Render("✓ " + string(row.stage)))
		case stageFailed:
			b.WriteString(failedStyle.Render(fmt.Sprintf("✗ %s: %v", row.stage, row.err)))
		}

		if row.detail != "" {
			b.WriteString(" " + faintStyle.Render(row.detail))
		}

		b.WriteString("\n")
	}

	return b.String()
}
