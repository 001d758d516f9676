package viz

import (
	"errors"
	"math"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/sim"
)

func toyLive() LiveConfig {
	p := dynamo.DefaultParams()
	p.TestMass = 1
	p.QuantumRadius = 0.1
	p.Lambda = 0.1
	p.Evaporation = false
	p.RadiusMin = 1e-6
	p.MassMin = 0
	return LiveConfig{Params: p, Mass: 1e5, Radius: 1, Duration: 0.01, Batch: 4}
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runToEnd(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 1000 && m.Running(); i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}
	if m.Running() {
		t.Fatal("run did not finish")
	}
	return m
}

func TestLiveExhausted(t *testing.T) {
	m, cmd := press(NewModel(toyLive()), "s")
	if cmd == nil || !m.Running() {
		t.Fatalf("expected run to start, err=%v", m.Err())
	}

	m = runToEnd(t, m)
	outcome, done := m.Outcome()
	if !done || outcome != sim.Exhausted {
		t.Errorf("expected exhausted, got %v (done=%v)", outcome, done)
	}
	if m.Last().Index != 10 {
		t.Errorf("expected 10 steps, got %d", m.Last().Index)
	}
	if m.View() == "" {
		t.Error("empty view")
	}
}

func TestLiveTransitioned(t *testing.T) {
	cfg := toyLive()
	cfg.Params.Threshold = -1
	m, _ := press(NewModel(cfg), "s")

	m = runToEnd(t, m)
	outcome, _ := m.Outcome()
	if outcome != sim.Transitioned {
		t.Errorf("expected transitioned, got %v", outcome)
	}
	if m.Last().Index != 1 {
		t.Errorf("expected stop at first step, got %d", m.Last().Index)
	}
}

func TestLiveDegenerate(t *testing.T) {
	cfg := toyLive()
	cfg.Mass = math.Inf(1)
	m, _ := press(NewModel(cfg), "s")

	m = runToEnd(t, m)
	outcome, _ := m.Outcome()
	if outcome != sim.Degenerate {
		t.Errorf("expected degenerate, got %v", outcome)
	}
}

func TestLiveNudgeAndToggle(t *testing.T) {
	m := NewModel(toyLive())

	m, _ = press(m, "right")
	if got := m.value("mass"); math.Abs(got-1.25e5) > 1 {
		t.Errorf("expected mass 1.25e5, got %g", got)
	}
	m, _ = press(m, "left")
	if got := m.value("mass"); math.Abs(got-1e5) > 1e-6 {
		t.Errorf("expected mass back at 1e5, got %g", got)
	}

	m, _ = press(m, "j")
	m, _ = press(m, "j")
	m, _ = press(m, "right")
	if got := m.Params().QuantumRadius; math.Abs(got-0.125) > 1e-12 {
		t.Errorf("expected rq 0.125, got %g", got)
	}

	m, _ = press(m, "e")
	if !m.Params().Evaporation {
		t.Error("expected evaporation toggled on")
	}

	m, _ = press(m, "r")
	if m.Params().Evaporation || m.Params().QuantumRadius != 0.1 {
		t.Error("reset did not restore base parameters")
	}
}

func TestLiveRejectsInadmissibleStart(t *testing.T) {
	cfg := toyLive()
	cfg.Params.RadiusMin = 10
	m, cmd := press(NewModel(cfg), "s")

	if cmd != nil || m.Running() {
		t.Error("run should not start")
	}
	if !errors.Is(m.Err(), dynamo.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", m.Err())
	}
}
