// Package ui provides the terminal view of a placement run.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
)

// batchMsg reports a finished batch of engine steps
type batchMsg struct {
	steps int
	err   error
}

// RunModel drives an engine one percent of the iteration budget at a time.
// The engine is only touched by one batch command at a time, and by Update
// between batches; View renders the copies Update keeps. Cancelling waits for
// the batch in flight, so the board never holds a half-applied step.
type RunModel struct {
	engine     *placement.Engine
	iterations int
	batch      int
	progress   placement.ProgressFunc
	title      string

	done      int
	percent   int
	score     float64
	width     int
	cancelled bool
	finished  bool
	stats     placement.Stats
	err       error
}

// NewRunModel prepares a run of iterations steps. progress, when set, is called
// from the UI loop with each new percentage.
func NewRunModel(e *placement.Engine, iterations int, title string, progress placement.ProgressFunc) RunModel {
	if iterations < 1 {
		iterations = 1
	}
	batch := iterations / 100
	if batch < 1 {
		batch = 1
	}
	return RunModel{
		engine:     e,
		iterations: iterations,
		batch:      batch,
		progress:   progress,
		title:      title,
		width:      defaultBarWidth,
	}
}

func (m RunModel) Init() tea.Cmd {
	m.engine.Start()
	if m.progress != nil {
		m.progress(0)
	}
	return m.next(0)
}

// next runs the following batch in a command goroutine
func (m RunModel) next(done int) tea.Cmd {
	n := m.batch
	if rest := m.iterations - done; rest < n {
		n = rest
	}
	e := m.engine
	return func() tea.Msg {
		steps, err := e.Batch(n)
		return batchMsg{steps: steps, err: err}
	}
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.finished {
				return m, tea.Quit
			}
			m.cancelled = true
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width - 20
		if m.width < minBarWidth {
			m.width = minBarWidth
		}
		if m.width > 2*defaultBarWidth {
			m.width = 2 * defaultBarWidth
		}
	case batchMsg:
		m.done += msg.steps
		m.stats = m.engine.Stats()
		m.score = m.engine.Board().Score(m.engine.Objective())
		if percent := m.done * 100 / m.iterations; percent != m.percent {
			m.percent = percent
			if m.progress != nil {
				m.progress(percent)
			}
		}

		if msg.err != nil || m.cancelled || m.done >= m.iterations {
			m.err = msg.err
			m.stats = m.engine.Finish()
			m.finished = true
			return m, tea.Quit
		}
		return m, m.next(m.done)
	}
	return m, nil
}

func (m RunModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n\n")

	filled := m.percent * m.width / 100
	b.WriteString(styleBarFull.Render(strings.Repeat("█", filled)))
	b.WriteString(styleBarEmpty.Render(strings.Repeat("░", m.width-filled)))
	b.WriteString(" " + StyleNumber.Render(fmt.Sprintf("%3d%%", m.percent)))
	b.WriteString("\n")

	b.WriteString(StyleDim.Render(fmt.Sprintf("%d/%d steps  %d accepted  %d collisions  ",
		m.done, m.iterations, m.stats.Accepted, m.stats.Collisions)))
	b.WriteString(StyleValue.Render(fmt.Sprintf("%s %.6g", m.engine.Objective(), m.score)))
	b.WriteString("\n\n")

	switch {
	case m.finished:
		b.WriteString(StyleSuccess.Render(IconSuccess + " done"))
	case m.cancelled:
		b.WriteString(StyleWarning.Render(IconWarning + " cancelling..."))
	default:
		b.WriteString(StyleDim.Render("q cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// Stats returns the engine counters as of the last batch, final once finished
func (m RunModel) Stats() placement.Stats { return m.stats }

// Err returns the error that stopped the run, if any
func (m RunModel) Err() error { return m.err }

// Cancelled reports whether the user stopped the run
func (m RunModel) Cancelled() bool { return m.cancelled }

// Finished reports whether the engine has been finished
func (m RunModel) Finished() bool { return m.finished }

// Run shows the model until the engine finishes or the user cancels
func Run(m RunModel, opts ...tea.ProgramOption) (RunModel, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, fmt.Errorf("run ui: %w", err)
	}
	return final.(RunModel), nil
}
