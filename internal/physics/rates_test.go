package physics

import (
	"math"
	"testing"
)

func TestSchwarzschildRadiusSun(t *testing.T) {
	rs := SchwarzschildRadius(SolarMass)
	if math.Abs(rs-2953.0) > 5 {
		t.Errorf("expected ~2953 m, got %f", rs)
	}
}

func TestScreenedForceZeroRadius(t *testing.T) {
	tests := []struct {
		name string
		r    float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"negative zero", math.Copysign(0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScreenedForce(1e5, tt.r, 0.1, 1.0); got != 0.0 {
				t.Errorf("ScreenedForce(r=%v) = %v, want 0", tt.r, got)
			}
		})
	}
}

func TestScreenedForceDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for r := 1e-3; r < 2.0; r += 1e-2 {
		f := ScreenedForce(1e5, r, 0.1, 1.0)
		if !(f < prev) {
			t.Fatalf("force not strictly decreasing at r=%f: %g >= %g", r, f, prev)
		}
		prev = f
	}
}

func TestScreenedForceCoupling(t *testing.T) {
	f1 := ScreenedForce(1e5, 0.5, 0.1, 1.0)
	f2 := ScreenedForce(1e5, 0.5, 0.1, 2.0)
	if math.Abs(f2-2*f1) > 1e-20 {
		t.Errorf("expected linear coupling, got %g and %g", f1, f2)
	}
}

func TestMassLossRate(t *testing.T) {
	if r := MassLossRate(1e5, 0); r != 0 {
		t.Errorf("expected zero rate with K=0, got %g", r)
	}

	r1 := MassLossRate(1e5, 1.0)
	r2 := MassLossRate(2e5, 1.0)
	if r1 >= 0 || r2 >= 0 {
		t.Fatalf("expected negative rates, got %g %g", r1, r2)
	}
	if math.Abs(r1/r2-4) > 1e-9 {
		t.Errorf("expected inverse-square scaling, ratio %f", r1/r2)
	}

	if !math.IsInf(MassLossRate(0, 1.0), -1) {
		t.Error("expected -Inf for zero mass")
	}
}

func TestTransitionFunction(t *testing.T) {
	got := TransitionFunction(2, 3, 10, 0.1)
	if math.Abs(got-5) > 1e-12 {
		t.Errorf("expected 5, got %f", got)
	}
}

func TestSphereVolume(t *testing.T) {
	if math.Abs(SphereVolume(1)-4.18879020479) > 1e-9 {
		t.Errorf("unexpected unit sphere volume %f", SphereVolume(1))
	}
}

func TestHawkingTemperature(t *testing.T) {
	temp := HawkingTemperature(SolarMass)
	if math.Abs(temp-6.17e-8)/6.17e-8 > 0.01 {
		t.Errorf("expected ~6.17e-8 K, got %g", temp)
	}
}
