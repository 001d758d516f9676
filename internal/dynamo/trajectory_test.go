package dynamo

import (
	"errors"
	"math"
	"testing"
)

func testParams() Params {
	p := DefaultParams()
	p.QuantumRadius = 0.1
	p.Lambda = 0.1
	p.Evaporation = false
	p.TestMass = 1.0
	p.RadiusMin = 1e-6
	p.MassMin = 0
	return p
}

func TestNewIntegratorInvalid(t *testing.T) {
	p := testParams()
	p.Dt = 0
	if _, err := NewIntegrator(p); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestTrajectoryLength(t *testing.T) {
	integ, err := NewIntegrator(testParams())
	if err != nil {
		t.Fatalf("integrator: %v", err)
	}

	traj := integ.Trajectory(NewState(1e5, 1.0), 10)
	count := 0
	for s := range traj.All() {
		if s.Index != count {
			t.Errorf("sample %d has index %d", count, s.Index)
		}
		count++
	}

	if count != 11 {
		t.Errorf("expected 11 samples, got %d", count)
	}
	if traj.Remaining() != 0 {
		t.Errorf("expected exhausted trajectory, %d left", traj.Remaining())
	}
}

func TestTrajectoryNotRestartable(t *testing.T) {
	integ, _ := NewIntegrator(testParams())
	traj := integ.Trajectory(NewState(1e5, 1.0), 5)

	for range traj.All() {
	}

	for s := range traj.All() {
		t.Fatalf("unexpected sample after drain: %+v", s)
	}
	if _, ok := traj.Next(); ok {
		t.Error("Next returned a sample after drain")
	}
}

func TestTrajectoryEarlyBreak(t *testing.T) {
	integ, _ := NewIntegrator(testParams())
	traj := integ.Trajectory(NewState(1e5, 1.0), 10)

	for s := range traj.All() {
		if s.Index == 3 {
			break
		}
	}

	s, ok := traj.Next()
	if !ok || s.Index != 4 {
		t.Errorf("expected to resume at index 4, got %d (ok=%v)", s.Index, ok)
	}
}

func TestTrajectoryMatchesStep(t *testing.T) {
	p := testParams()
	integ, _ := NewIntegrator(p)
	traj := integ.Trajectory(NewState(1e5, 1.0), 5)

	want := NewState(1e5, 1.0)
	traj.Next()
	for i := 0; i < 5; i++ {
		want, _ = Step(want, p)
		got, _ := traj.Next()
		if got.Radius != want.Radius || got.Transition != want.Transition {
			t.Fatalf("step %d mismatch: got %+v want %+v", i, got, want)
		}
	}
}

func TestStateFinite(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"normal", NewState(1e5, 1), true},
		{"NaN mass", State{Mass: math.NaN(), Radius: 1}, false},
		{"Inf radius", State{Mass: 1, Radius: math.Inf(1)}, false},
		{"-Inf transition", State{Mass: 1, Radius: 1, Transition: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Finite(); got != tt.want {
				t.Errorf("Finite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: 150, Time: 1.5, Wrapped: ErrNumericDegeneracy}
	want := "step 150 (t=1.5000): dynamo: non-finite state"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrNumericDegeneracy) {
		t.Error("StepError does not unwrap to ErrNumericDegeneracy")
	}
}

func TestIntegratorSteps(t *testing.T) {
	p := testParams()
	p.Dt = 0.5
	integ, _ := NewIntegrator(p)
	if n := integ.Steps(10); n != 20 {
		t.Errorf("expected 20 steps, got %d", n)
	}
}
