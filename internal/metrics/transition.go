package metrics

import (
	"math"

	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/sim"
)

type PeakTransition struct {
	name string
	peak float64
}

func NewPeakTransition() *PeakTransition {
	return &PeakTransition{name: "peak_transition", peak: math.Inf(-1)}
}

func (p *PeakTransition) Name() string { return p.name }

// Observe skips the initial sample, whose transition is never computed.
func (p *PeakTransition) Observe(s dynamo.Sample) {
	if s.Index == 0 {
		return
	}
	p.peak = math.Max(p.peak, s.Transition)
}

func (p *PeakTransition) Value() float64 {
	if math.IsInf(p.peak, -1) {
		return 0
	}
	return p.peak
}

func (p *PeakTransition) Reset() { p.peak = math.Inf(-1) }

// TransitionTime records the simulation time of the first crossing, or -1.
type TransitionTime struct {
	name string
	at   float64
}

func NewTransitionTime() *TransitionTime {
	return &TransitionTime{name: "transition_time", at: -1}
}

func (t *TransitionTime) Name() string { return t.name }

func (t *TransitionTime) Observe(s dynamo.Sample) {
	if s.Crossed && t.at < 0 {
		t.at = s.Time
	}
}

func (t *TransitionTime) Value() float64 { return t.at }
func (t *TransitionTime) Reset()         { t.at = -1 }

func Defaults() []sim.Metric {
	return []sim.Metric{
		NewMassLoss(),
		NewMinRadius(),
		NewPeakTransition(),
		NewTransitionTime(),
	}
}
