package dynamo

import (
	"math"

	"github.com/san-kum/qgsim/internal/physics"
)

// Step advances s by one explicit step of p.Dt and reports whether the new
// transition value exceeds the threshold. All rate terms use the pre-step
// values. Transitioned is latched in the returned state; stopping is left to
// the caller, and stepping past a crossing is allowed.
func Step(s State, p Params) (State, bool) {
	acc := physics.GravitationalAcceleration(s.Mass, s.Radius)
	accQG := physics.ScreenedForce(s.Mass, s.Radius, p.QuantumRadius, p.Coupling) / p.TestMass

	next := s
	next.PrevRadius = s.Radius
	next.Radius = math.Max(p.RadiusMin, s.Radius-p.RadiusScale*p.Dt*(acc+accQG))

	if p.Evaporation {
		next.Mass = math.Max(p.MassMin, s.Mass+p.Dt*physics.MassLossRate(s.Mass, p.DecayScale))
	}

	rho := physics.QuantumDensity(p.DensityScale, next.Radius, p.QuantumRadius)
	vol := physics.SphereVolume(next.Radius)
	next.Transition = physics.TransitionFunction(rho, vol, next.RadiusRate(p.Dt), p.Lambda)

	next.Time = s.Time + p.Dt
	next.Steps = s.Steps + 1

	crossed := next.Transition > p.Threshold
	if crossed {
		next.Transitioned = true
	}
	return next, crossed
}

// Integrator binds a validated parameter set.
type Integrator struct {
	params Params
}

func NewIntegrator(p Params) (*Integrator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Integrator{params: p}, nil
}

func (in *Integrator) Params() Params { return in.params }

func (in *Integrator) Step(s State) (State, bool) {
	return Step(s, in.params)
}

// Steps returns the fixed iteration count covering timeMax.
func (in *Integrator) Steps(timeMax float64) int {
	return int(timeMax / in.params.Dt)
}
