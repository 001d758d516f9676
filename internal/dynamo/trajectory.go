package dynamo

import "iter"

// Trajectory is a lazy, finite, non-restartable sequence of samples. The
// initial state is yielded first, followed by one sample per step until the
// step budget is spent.
type Trajectory struct {
	in        *Integrator
	state     State
	remaining int
	started   bool
}

func (in *Integrator) Trajectory(s0 State, steps int) *Trajectory {
	return &Trajectory{in: in, state: s0, remaining: steps}
}

func (t *Trajectory) Next() (Sample, bool) {
	if !t.started {
		t.started = true
		return t.state.Sample(false), true
	}
	if t.remaining <= 0 {
		return Sample{}, false
	}
	t.remaining--

	var crossed bool
	t.state, crossed = t.in.Step(t.state)
	return t.state.Sample(crossed), true
}

// State returns the state after the most recently yielded sample.
func (t *Trajectory) State() State { return t.state }

func (t *Trajectory) Remaining() int { return t.remaining }

// All drains the trajectory. Ranging over it a second time yields nothing.
func (t *Trajectory) All() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for {
			s, ok := t.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}
