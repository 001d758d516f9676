package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/qgsim/internal/dynamo"
)

// Runner drives an integrator over a fixed step budget. Stopping at the
// first crossing is a policy of the runner; the integrator stays a pure
// per-step function.
type Runner struct {
	integ     *dynamo.Integrator
	metrics   []Metric
	observers []Observer
}

func New(integ *dynamo.Integrator) *Runner {
	return &Runner{
		integ:     integ,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Integrator() *dynamo.Integrator { return r.integ }

func (r *Runner) Run(ctx context.Context, s0 dynamo.State, cfg Config) (*Result, error) {
	if err := r.validate(s0, cfg); err != nil {
		return nil, err
	}

	steps := r.integ.Steps(cfg.TimeMax)
	result := &Result{
		Samples:   make([]dynamo.Sample, 0, steps+1),
		CrossedAt: -1,
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	s := s0
	r.record(result, s.Sample(false))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.finish(result, s)
			return result, ctx.Err()
		default:
		}

		next, crossed := r.integ.Step(s)
		s = next
		result.StepsTaken++
		r.record(result, s.Sample(crossed))

		if !s.Finite() {
			if len(result.Errors) == 0 {
				result.Errors = append(result.Errors, &dynamo.StepError{
					Step:    s.Steps,
					Time:    s.Time,
					State:   s,
					Wrapped: dynamo.ErrNumericDegeneracy,
				})
			}
			if cfg.HaltOnDegenerate {
				result.Outcome = Degenerate
				break
			}
		}

		if crossed && result.CrossedAt < 0 {
			result.CrossedAt = s.Steps
			result.CrossedTime = s.Time
		}
		if crossed && cfg.StopOnTransition {
			break
		}
	}

	r.finish(result, s)
	return result, nil
}

func (r *Runner) record(result *Result, smp dynamo.Sample) {
	for _, m := range r.metrics {
		m.Observe(smp)
	}
	for _, obs := range r.observers {
		obs.OnStep(smp)
	}
	result.Samples = append(result.Samples, smp)
}

func (r *Runner) finish(result *Result, s dynamo.State) {
	result.Final = s
	if result.Outcome != Degenerate && s.Transitioned {
		result.Outcome = Transitioned
	}
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Runner) validate(s0 dynamo.State, cfg Config) error {
	if cfg.TimeMax <= 0 {
		return fmt.Errorf("%w: time budget must be positive, got %f", dynamo.ErrConfiguration, cfg.TimeMax)
	}
	return r.integ.Params().Admits(s0)
}

// RunWithCallback streams samples to fn until the budget is spent, fn
// returns false, or a crossing occurs with StopOnTransition set.
func (r *Runner) RunWithCallback(ctx context.Context, s0 dynamo.State, cfg Config, fn func(dynamo.Sample) bool) error {
	if err := r.validate(s0, cfg); err != nil {
		return err
	}

	steps := r.integ.Steps(cfg.TimeMax)
	traj := r.integ.Trajectory(s0, steps)

	for smp := range traj.All() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !fn(smp) {
			return nil
		}

		if st := traj.State(); cfg.HaltOnDegenerate && !st.Finite() {
			return &dynamo.StepError{Step: st.Steps, Time: st.Time, State: st, Wrapped: dynamo.ErrNumericDegeneracy}
		}
		if smp.Crossed && cfg.StopOnTransition {
			return nil
		}
	}

	return nil
}
