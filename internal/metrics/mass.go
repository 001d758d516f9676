package metrics

import (
	"math"

	"github.com/san-kum/qgsim/internal/dynamo"
)

// MassLoss reports the fraction of the initial mass lost so far.
type MassLoss struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewMassLoss() *MassLoss {
	return &MassLoss{name: "mass_loss"}
}

func (m *MassLoss) Name() string { return m.name }

func (m *MassLoss) Observe(s dynamo.Sample) {
	if m.samples == 0 {
		m.initial = s.Mass
	}
	m.current = s.Mass
	m.samples++
}

func (m *MassLoss) Value() float64 {
	if m.samples == 0 || m.initial == 0 {
		return 0
	}
	return (m.initial - m.current) / m.initial
}

func (m *MassLoss) Reset() {
	m.initial = 0
	m.current = 0
	m.samples = 0
}

type MinRadius struct {
	name string
	min  float64
}

func NewMinRadius() *MinRadius {
	return &MinRadius{name: "min_radius", min: math.Inf(1)}
}

func (m *MinRadius) Name() string { return m.name }

func (m *MinRadius) Observe(s dynamo.Sample) {
	m.min = math.Min(m.min, s.Radius)
}

func (m *MinRadius) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinRadius) Reset() { m.min = math.Inf(1) }
