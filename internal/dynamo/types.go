package dynamo

import (
	"fmt"
	"math"
)

// DefaultRadiusScale is the ad hoc factor applied to the total acceleration
// when shrinking the radius.
const DefaultRadiusScale = 0.001

// DefaultThreshold is the transition value above which a run is considered
// to have changed regime.
const DefaultThreshold = 1e25

type Params struct {
	Coupling      float64 // A, screened force strength
	TestMass      float64 // divides the screened force into an acceleration
	QuantumRadius float64 // r_Q
	Lambda        float64 // curvature-rate coupling of the transition function
	DensityScale  float64 // rho0
	DecayScale    float64 // K, evaporation multiplier
	Threshold     float64
	Evaporation   bool
	RadiusMin     float64
	MassMin       float64
	RadiusScale   float64
	Dt            float64
}

func DefaultParams() Params {
	return Params{
		Coupling:      1.0,
		TestMass:      1e20,
		QuantumRadius: 1.0,
		Lambda:        1e-23,
		DensityScale:  1e-9,
		DecayScale:    1e30,
		Threshold:     DefaultThreshold,
		Evaporation:   true,
		RadiusMin:     1e3,
		MassMin:       1e25,
		RadiusScale:   DefaultRadiusScale,
		Dt:            1e-3,
	}
}

// Validate rejects configurations that cannot produce a meaningful run.
// It is meant to be called once before stepping, never per step.
func (p Params) Validate() error {
	if math.IsNaN(p.Dt) || math.IsInf(p.Dt, 0) || p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrConfiguration, p.Dt)
	}
	if p.RadiusMin < 0 {
		return fmt.Errorf("%w: radius floor must not be negative, got %g", ErrConfiguration, p.RadiusMin)
	}
	if p.MassMin < 0 {
		return fmt.Errorf("%w: mass floor must not be negative, got %g", ErrConfiguration, p.MassMin)
	}
	if !(p.QuantumRadius > 0) {
		return fmt.Errorf("%w: quantum radius must be positive, got %g", ErrConfiguration, p.QuantumRadius)
	}
	if !(p.TestMass > 0) {
		return fmt.Errorf("%w: test mass must be positive, got %g", ErrConfiguration, p.TestMass)
	}
	if math.IsNaN(p.Threshold) {
		return fmt.Errorf("%w: threshold is NaN", ErrConfiguration)
	}
	return nil
}

// Admits reports whether s is a valid starting point under p.
func (p Params) Admits(s State) error {
	if !(s.Radius > 0) {
		return fmt.Errorf("%w: initial radius must be positive, got %g", ErrConfiguration, s.Radius)
	}
	if s.Radius < p.RadiusMin {
		return fmt.Errorf("%w: initial radius %g below floor %g", ErrConfiguration, s.Radius, p.RadiusMin)
	}
	if s.Mass < p.MassMin {
		return fmt.Errorf("%w: initial mass %g below floor %g", ErrConfiguration, s.Mass, p.MassMin)
	}
	return nil
}

type State struct {
	Mass       float64
	Radius     float64
	PrevRadius float64 // radius of the previous completed step
	Transition float64
	Time       float64
	Steps      int

	Transitioned bool
}

// NewState starts a run. The previous radius is bootstrapped to the initial
// radius so the first backward difference is (r0 - r1)/dt.
func NewState(mass, radius float64) State {
	return State{
		Mass:       mass,
		Radius:     radius,
		PrevRadius: radius,
	}
}

func (s State) Finite() bool {
	for _, v := range [...]float64{s.Mass, s.Radius, s.Transition, s.Time} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) RadiusRate(dt float64) float64 {
	return (s.PrevRadius - s.Radius) / dt
}

func (s State) Sample(crossed bool) Sample {
	return Sample{
		Index:      s.Steps,
		Time:       s.Time,
		Mass:       s.Mass,
		Radius:     s.Radius,
		Transition: s.Transition,
		Crossed:    crossed,
	}
}

// Sample is one point of a trajectory as handed to plotting and export.
type Sample struct {
	Index      int     `json:"index"`
	Time       float64 `json:"time"`
	Mass       float64 `json:"mass"`
	Radius     float64 `json:"radius"`
	Transition float64 `json:"transition"`
	Crossed    bool    `json:"crossed"`
}
