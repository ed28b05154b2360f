// Package tui renders a live progress view for a crew run. It follows The
// Elm Architecture: the model holds the rendered progress lines, Update
// folds in new lines from the run, and View draws the feed with a spinner
// while workers are still executing.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crewsmith/crewsmith/internal/workflow"
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	capabilityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	textStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	errStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// Outcome carries the run result (or failure) into the view.
type Outcome struct {
	Result workflow.Result
	Err    error
}

type lineMsg struct {
	line workflow.ProgressLine
	ok   bool
}

type outcomeMsg Outcome

// RunModel is the bubbletea model for a single crew run.
type RunModel struct {
	spinner  spinner.Model
	lines    []string
	progress <-chan workflow.ProgressLine
	outcomes <-chan Outcome
	outcome  *Outcome
	width    int
	height   int
}

// NewRun builds the run view. The caller drives the orchestrator in a
// goroutine, feeding rendered lines on progress and exactly one Outcome on
// outcomes when the run ends.
func NewRun(progress <-chan workflow.ProgressLine, outcomes <-chan Outcome) RunModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle
	return RunModel{
		spinner:  sp,
		progress: progress,
		outcomes: outcomes,
	}
}

// Init starts the spinner and begins listening for progress.
func (m RunModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForLine(), m.waitForOutcome())
}

func (m RunModel) waitForLine() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-m.progress
		return lineMsg{line: line, ok: ok}
	}
}

func (m RunModel) waitForOutcome() tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(<-m.outcomes)
	}
}

// Update folds messages into the model.
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case lineMsg:
		if !msg.ok {
			return m, nil
		}
		m.lines = append(m.lines, styleLine(msg.line))
		return m, m.waitForLine()

	case outcomeMsg:
		outcome := Outcome(msg)
		m.outcome = &outcome
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the feed with the most recent lines that fit the window.
func (m RunModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("crewsmith"))
	b.WriteString("\n\n")

	visible := m.lines
	if limit := m.height - 5; limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.outcome == nil:
		b.WriteString(fmt.Sprintf("%s running crew...", m.spinner.View()))
	case m.outcome.Err != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("run failed: %v", m.outcome.Err)))
	default:
		b.WriteString(doneStyle.Render(fmt.Sprintf("run %s", m.outcome.Result.Status)))
	}
	return b.String()
}

// Outcome returns the run outcome once the view has quit.
func (m RunModel) Outcome() (Outcome, bool) {
	if m.outcome == nil {
		return Outcome{}, false
	}
	return *m.outcome, true
}

func styleLine(line workflow.ProgressLine) string {
	switch line.Kind {
	case workflow.LineHeader:
		return headerStyle.Render(line.String())
	case workflow.LineCapability:
		return capabilityStyle.Render(line.String())
	default:
		return textStyle.Render(line.String())
	}
}
