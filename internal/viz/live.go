package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/sim"
)

const (
	historyCapacity = 400
	defaultBatch    = 50
	nudgeFactor     = 1.25
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// slider is a strictly positive parameter nudged on a log scale.
type slider struct {
	name, unit string
	value      float64
	min, max   float64
}

func (s *slider) nudge(factor float64) {
	s.value = math.Min(s.max, math.Max(s.min, s.value*factor))
}

// LiveConfig seeds the parameter surface.
type LiveConfig struct {
	Params   dynamo.Params
	Mass     float64
	Radius   float64
	Duration float64
	Batch    int // steps consumed per frame
}

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseDone
)

// Model is the Bubble Tea model of the live app.
type Model struct {
	base     LiveConfig
	sliders  []slider
	cursor   int
	evap     bool
	batch    int
	duration float64

	phase   phase
	outcome sim.Outcome
	err     error

	traj      *dynamo.Trajectory
	total     int
	last      dynamo.Sample
	threshold float64
	radii     []float64
	trans     []float64

	width int
}

func NewModel(cfg LiveConfig) Model {
	batch := cfg.Batch
	if batch <= 0 {
		batch = defaultBatch
	}
	m := Model{base: cfg, batch: batch, width: 80}
	m.reset()
	return m
}

func (m *Model) reset() {
	cfg := m.base
	m.sliders = []slider{
		{name: "mass", unit: "kg", value: cfg.Mass, min: 1, max: 1e45},
		{name: "radius", unit: "m", value: cfg.Radius, min: 1e-9, max: 1e20},
		{name: "rq", unit: "m", value: cfg.Params.QuantumRadius, min: 1e-9, max: 1e20},
		{name: "lambda", value: nonZero(cfg.Params.Lambda), min: 1e-40, max: 1e10},
		{name: "k_scale", value: nonZero(cfg.Params.DecayScale), min: 1e-10, max: 1e50},
		{name: "dt", unit: "s", value: cfg.Params.Dt, min: 1e-9, max: 1},
	}
	m.evap = cfg.Params.Evaporation
	m.duration = cfg.Duration
	m.phase = phaseIdle
	m.err = nil
	m.traj = nil
	m.total = 0
	m.last = dynamo.Sample{}
	m.radii = m.radii[:0]
	m.trans = m.trans[:0]
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1e-6
	}
	return math.Abs(v)
}

func (m *Model) value(name string) float64 {
	for _, s := range m.sliders {
		if s.name == name {
			return s.value
		}
	}
	return 0
}

// Params returns the parameter set the next run will use.
func (m Model) Params() dynamo.Params {
	p := m.base.Params
	p.QuantumRadius = m.value("rq")
	p.Lambda = m.value("lambda")
	p.DecayScale = m.value("k_scale")
	p.Dt = m.value("dt")
	p.Evaporation = m.evap
	return p
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case TickMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		m.advance()
		if m.phase == phaseRunning {
			return m, tick()
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sliders)-1 {
			m.cursor++
		}
	case "left", "h":
		if m.phase != phaseRunning {
			m.sliders[m.cursor].nudge(1 / nudgeFactor)
		}
	case "right", "l":
		if m.phase != phaseRunning {
			m.sliders[m.cursor].nudge(nudgeFactor)
		}
	case "e":
		if m.phase != phaseRunning {
			m.evap = !m.evap
		}
	case "s":
		if m.phase != phaseRunning {
			return m, m.start()
		}
	case "r":
		m.reset()
	}
	return m, nil
}

func (m *Model) start() tea.Cmd {
	integ, err := dynamo.NewIntegrator(m.Params())
	if err != nil {
		m.err = err
		return nil
	}
	s0 := dynamo.NewState(m.value("mass"), m.value("radius"))
	if err := integ.Params().Admits(s0); err != nil {
		m.err = err
		return nil
	}

	m.err = nil
	m.total = integ.Steps(m.duration)
	m.traj = integ.Trajectory(s0, m.total)
	m.threshold = integ.Params().Threshold
	m.radii = m.radii[:0]
	m.trans = m.trans[:0]
	m.phase = phaseRunning
	return tick()
}

// advance consumes up to one batch of the trajectory.
func (m *Model) advance() {
	for i := 0; i < m.batch; i++ {
		smp, ok := m.traj.Next()
		if !ok {
			m.finish(sim.Exhausted)
			return
		}
		m.record(smp)

		if !m.traj.State().Finite() {
			m.finish(sim.Degenerate)
			return
		}
		if smp.Crossed {
			m.finish(sim.Transitioned)
			return
		}
	}
}

func (m *Model) record(smp dynamo.Sample) {
	m.last = smp
	m.radii = appendCapped(m.radii, smp.Radius)
	m.trans = appendCapped(m.trans, smp.Transition)
}

func appendCapped(buf []float64, v float64) []float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return buf
	}
	if len(buf) >= historyCapacity {
		copy(buf, buf[1:])
		buf = buf[:len(buf)-1]
	}
	return append(buf, v)
}

func (m *Model) finish(o sim.Outcome) {
	m.phase = phaseDone
	m.outcome = o
}

// Outcome reports the end state of the last run, if it has finished.
func (m Model) Outcome() (sim.Outcome, bool) {
	return m.outcome, m.phase == phaseDone
}

func (m Model) Running() bool { return m.phase == phaseRunning }

func (m Model) Last() dynamo.Sample { return m.last }

func (m Model) Err() error { return m.err }

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("QGSIM") + "  " + subtle.Render("quantum-gravity collapse") + "\n  " + separator(40) + "\n\n")

	left := m.viewParams()
	right := m.viewStats()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, statsPanel.Render(right)) + "\n")

	if len(m.trans) > 1 {
		chart := asciigraph.PlotMany([][]float64{m.trans, flat(m.threshold, len(m.trans))},
			asciigraph.Height(6),
			asciigraph.Width(50),
			asciigraph.Precision(2),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
			asciigraph.Caption("transition / threshold"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.radii) > 1 {
		chart := asciigraph.Plot(m.radii, asciigraph.Height(4), asciigraph.Width(50), asciigraph.Precision(4), asciigraph.Caption("radius"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	if m.err != nil {
		b.WriteString("  " + errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n  " + keyHint("j/k", "select") + keyHint("h/l", "adjust") + keyHint("e", "evaporation") +
		keyHint("s", "start") + keyHint("r", "reset") + keyHint("q", "quit") + "\n")
	return b.String()
}

func (m Model) viewParams() string {
	var b strings.Builder
	for i, s := range m.sliders {
		val := fmt.Sprintf("%10.3e %s", s.value, s.unit)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", cursorStyle.Render("▸"), activeName.Render(fmt.Sprintf("%-8s", s.name)), activeValue.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleName.Render(fmt.Sprintf("%-8s", s.name)), idleValue.Render(val)))
		}
	}
	evap := "off"
	if m.evap {
		evap = "on"
	}
	b.WriteString(fmt.Sprintf("    %s %s\n", idleName.Render(fmt.Sprintf("%-8s", "evap")), idleValue.Render(evap)))
	return b.String()
}

func (m Model) viewStats() string {
	var b strings.Builder
	switch m.phase {
	case phaseIdle:
		b.WriteString(statusIdle.Render("IDLE") + "\n\n")
	case phaseRunning:
		done := 0.0
		if m.total > 0 {
			done = float64(m.last.Index) / float64(m.total)
		}
		b.WriteString(statusRunning.Render("RUNNING") + " " + progressBar(done, 20) + "\n\n")
	case phaseDone:
		b.WriteString(outcomeStyle[m.outcome].Render(strings.ToUpper(m.outcome.String())) + "\n\n")
	}

	b.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d / %d", m.last.Index, m.total)) + "\n")
	b.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4fs", m.last.Time)) + "\n")
	b.WriteString(labelStyle.Render("Mass") + valueStyle.Render(fmt.Sprintf("%.4e kg", m.last.Mass)) + "\n")
	b.WriteString(labelStyle.Render("Radius") + valueStyle.Render(fmt.Sprintf("%.6e m", m.last.Radius)) + "\n")
	b.WriteString(labelStyle.Render("Transition") + valueStyle.Render(fmt.Sprintf("%.4e", m.last.Transition)) + "\n")
	return b.String()
}

func flat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// RunLive blocks until the user quits.
func RunLive(cfg LiveConfig) error {
	_, err := tea.NewProgram(NewModel(cfg), tea.WithAltScreen()).Run()
	return err
}
