package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/echolens/echolens/internal/models"
	"github.com/echolens/echolens/internal/pipeline"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// stageLabels are the human names shown next to the progress bar.
var stageLabels = map[pipeline.Stage]string{
	pipeline.StageResearch: "Research: gathering multi-platform feedback",
	pipeline.StageOutline:  "Outline: structuring the report",
	pipeline.StageDraft:    "Writer: drafting sections",
	pipeline.StageEdit:     "Editor: reviewing and refining",
}

// stageMsg marks a stage starting.
type stageMsg pipeline.Stage

// reportDoneMsg carries the finished run or its error.
type reportDoneMsg struct {
	run *models.PipelineRun
	err error
}

// reportModel is the bubbletea model for pipeline progress. cancel stops
// the running pipeline when the user aborts.
type reportModel struct {
	events   <-chan tea.Msg
	cancel   context.CancelFunc
	progress progress.Model
	theme    Theme
	stage    pipeline.Stage
	started  int
	done     bool
	err      error
	run      *models.PipelineRun
}

func newReportModel(events <-chan tea.Msg, cancel context.CancelFunc) reportModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return reportModel{
		events:   events,
		cancel:   cancel,
		progress: prog,
		theme:    defaultTheme,
	}
}

// waitForEvent reads the next pipeline event.
func (m reportModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m reportModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.progress.Init(),
	)
}

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}

	case stageMsg:
		m.stage = pipeline.Stage(msg)
		m.started++
		return m, m.waitForEvent()

	case reportDoneMsg:
		m.done = true
		m.run = msg.run
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m reportModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m reportModel) renderContent() string {
	if m.done {
		if m.err != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Report failed: %s\n", m.err))
		}
		return m.theme.completedStyle().Render("✓ Report generation complete\n")
	}

	if m.started == 0 {
		return "Starting pipeline...\n"
	}

	// A stage counts as half done while running.
	pct := (float64(m.started) - 0.5) / float64(len(pipeline.Stages))

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%d/%d]", m.started, len(pipeline.Stages)))
	bar := m.progress.ViewAs(pct)
	label := stageLabels[m.stage]
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s\n%s\n%s\n", status, label, bar, hint)
}

// runReportProgress drives the pipeline with an interactive progress UI and
// returns the finished run.
func runReportProgress(ctx context.Context, generate func(ctx context.Context, progress pipeline.ProgressFunc) (*models.PipelineRun, error)) (*models.PipelineRun, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tea.Msg, len(pipeline.Stages)+1)

	go func() {
		run, err := generate(ctx, func(stage pipeline.Stage) {
			events <- stageMsg(stage)
		})
		events <- reportDoneMsg{run: run, err: err}
	}()

	p := tea.NewProgram(newReportModel(events, cancel))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(reportModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.run, nil
}
