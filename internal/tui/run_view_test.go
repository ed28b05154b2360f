package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crewsmith/crewsmith/internal/workflow"
)

func TestRunModelAppendsProgressLines(t *testing.T) {
	model := NewRun(make(chan workflow.ProgressLine), make(chan Outcome))
	next, cmd := model.Update(lineMsg{line: workflow.ProgressLine{Kind: workflow.LineHeader, Worker: "lead"}, ok: true})
	model = next.(RunModel)
	if cmd == nil {
		t.Fatalf("expected model to keep listening for lines")
	}
	if len(model.lines) != 1 {
		t.Fatalf("expected one rendered line, got %d", len(model.lines))
	}
	if !strings.Contains(model.View(), "lead") {
		t.Fatalf("view should show the worker header:\n%s", model.View())
	}
}

func TestRunModelClosedChannelStopsListening(t *testing.T) {
	model := NewRun(nil, nil)
	next, cmd := model.Update(lineMsg{ok: false})
	model = next.(RunModel)
	if cmd != nil {
		t.Fatalf("closed progress channel should end the listen loop")
	}
	if len(model.lines) != 0 {
		t.Fatalf("no line should be recorded for a closed channel")
	}
}

func TestRunModelOutcomeQuits(t *testing.T) {
	model := NewRun(nil, nil)
	result := workflow.Result{Status: workflow.StatusCompleted, FinalOutput: "done"}
	next, cmd := model.Update(outcomeMsg(Outcome{Result: result}))
	model = next.(RunModel)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	outcome, ok := model.Outcome()
	if !ok || outcome.Result.FinalOutput != "done" {
		t.Fatalf("outcome not captured: %+v", outcome)
	}
	if !strings.Contains(model.View(), "completed") {
		t.Fatalf("view should report completion:\n%s", model.View())
	}
}

func TestRunModelQuitKeys(t *testing.T) {
	model := NewRun(nil, nil)
	if _, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Fatalf("esc should quit")
	}
}
