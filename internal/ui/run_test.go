package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

func testEngine(t *testing.T, ignoreAll bool) *placement.Engine {
	t.Helper()
	board, err := placement.NewBoard(geom.NewRect(0, 0, 1000, 1000), 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		x := int64(20 + i*100)
		fp := placement.NewFootprint(fmt.Sprintf("R%d", i+1), placement.Front, geom.Point{X: x, Y: 20}, geom.NewRect(x, 20, 50, 50))
		fp.Ignored = ignoreAll
		if err := board.Add(fp); err != nil {
			t.Fatal(err)
		}
	}
	e, err := placement.NewEngine(board, placement.WithObjective(placement.Spread), placement.WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// drive runs commands through Update until the model asks to quit
func drive(t *testing.T, m RunModel, cmd tea.Cmd) RunModel {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 1000 {
			t.Fatalf("model did not quit")
		}
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return m
		}
		next, c := m.Update(msg)
		m = next.(RunModel)
		cmd = c
	}
	return m
}

func TestRunModelCompletes(t *testing.T) {
	var percents []int
	m := NewRunModel(testEngine(t, false), 250, "placing", func(p int) { percents = append(percents, p) })

	m = drive(t, m, m.Init())

	if !m.Finished() || m.Cancelled() || m.Err() != nil {
		t.Fatalf("model = finished %v cancelled %v err %v", m.Finished(), m.Cancelled(), m.Err())
	}
	if m.Stats().Attempts != 250 {
		t.Errorf("Stats().Attempts = %d, want 250", m.Stats().Attempts)
	}
	if m.engine.State() != placement.Done {
		t.Errorf("engine state = %v, want done", m.engine.State())
	}
	if len(percents) == 0 || percents[0] != 0 || percents[len(percents)-1] != 100 {
		t.Errorf("progress = %v, want 0 through 100", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] <= percents[i-1] {
			t.Errorf("progress not increasing: %v", percents)
			break
		}
	}
	if !placement.Valid(m.engine.Board(), m.engine.Policy()) {
		t.Errorf("board invalid after run")
	}
}

func TestRunModelCancel(t *testing.T) {
	m := NewRunModel(testEngine(t, false), 10_000, "placing", nil)
	pending := m.Init()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(RunModel)
	if cmd != nil {
		t.Fatalf("Update(q) with a batch in flight returned a command")
	}
	if !m.Cancelled() || m.Finished() {
		t.Fatalf("after q: cancelled %v finished %v", m.Cancelled(), m.Finished())
	}
	if !strings.Contains(m.View(), "cancelling") {
		t.Errorf("View() does not show cancellation")
	}

	m = drive(t, m, pending)
	if !m.Finished() {
		t.Fatalf("model not finished after the pending batch")
	}
	if got := m.Stats().Attempts; got != 100 {
		t.Errorf("Stats().Attempts = %d, want one batch of 100", got)
	}
	if !strings.Contains(m.View(), "done") {
		t.Errorf("View() does not show completion")
	}
}

func TestRunModelQuitAfterFinish(t *testing.T) {
	m := NewRunModel(testEngine(t, false), 5, "placing", nil)
	m = drive(t, m, m.Init())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("Update(ctrl+c) after finish returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Update(ctrl+c) after finish did not quit")
	}
}

func TestRunModelNoEligible(t *testing.T) {
	m := NewRunModel(testEngine(t, true), 500, "placing", nil)
	m = drive(t, m, m.Init())

	if !errors.Is(m.Err(), placement.ErrNoEligibleFootprints) {
		t.Errorf("Err() = %v, want %s", m.Err(), placement.CodeNoEligibleFootprints)
	}
	if m.Stats().Attempts != 1 || !m.Stats().StoppedEarly {
		t.Errorf("Stats() = %+v, want one attempt stopped early", m.Stats())
	}
}

func TestRunModelView(t *testing.T) {
	m := NewRunModel(testEngine(t, false), 100, "Placing board", nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	m = next.(RunModel)
	if m.width != minBarWidth {
		t.Errorf("bar width = %d, want %d", m.width, minBarWidth)
	}

	view := m.View()
	for _, want := range []string{"Placing board", "0%", "0/100 steps", "spread", "q cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestRunModelViewDuringBatch(t *testing.T) {
	m := NewRunModel(testEngine(t, false), 100_000, "placing", nil)
	pending := m.Init()

	result := make(chan tea.Msg, 1)
	go func() { result <- pending() }()

	// Resizes and redraws keep arriving while the batch runs
	var msg tea.Msg
	for msg == nil {
		next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 10})
		m = next.(RunModel)
		if !strings.Contains(m.View(), "0/100000 steps") {
			t.Fatalf("View() changed before the batch reported:\n%s", m.View())
		}
		select {
		case msg = <-result:
		default:
		}
	}

	next, cmd := m.Update(msg)
	m = next.(RunModel)
	if cmd == nil {
		t.Fatalf("Update(batch) returned no follow-up batch")
	}
	if got := m.Stats().Attempts; got != 1000 {
		t.Errorf("Stats().Attempts = %d, want 1000", got)
	}
	if !strings.Contains(m.View(), "1000/100000 steps") {
		t.Errorf("View() missing batch progress:\n%s", m.View())
	}
}
