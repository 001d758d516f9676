// Package chirp synthesizes an audible inspiral chirp for a binary of two
// masses and renders it through beep.
package chirp

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidSpec = errors.New("chirp: invalid spec")

// Spec describes one chirp. Masses are in solar masses.
type Spec struct {
	M1, M2     float64
	Spin       float64
	Duration   float64 // seconds
	SampleRate int
	Volume     float64 // 0..1
	Rumble     bool    // add the low-frequency cue used for transitioned runs
}

func DefaultSpec() Spec {
	return Spec{
		M1:         30,
		M2:         30,
		Spin:       0.5,
		Duration:   2.4,
		SampleRate: 44100,
		Volume:     0.28,
	}
}

func (s Spec) Validate() error {
	if !(s.M1 > 0) || !(s.M2 > 0) {
		return fmt.Errorf("%w: masses must be positive, got %g and %g", ErrInvalidSpec, s.M1, s.M2)
	}
	if !(s.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidSpec, s.Duration)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidSpec, s.SampleRate)
	}
	if s.Volume < 0 || s.Volume > 1 {
		return fmt.Errorf("%w: volume must be within [0, 1], got %g", ErrInvalidSpec, s.Volume)
	}
	return nil
}

func ChirpMass(m1, m2 float64) float64 {
	return math.Pow(m1*m2, 3.0/5.0) / math.Pow(m1+m2, 1.0/5.0)
}

// Band returns the start and end frequency of the sweep in Hz.
func (s Spec) Band() (f0, f1 float64) {
	return 18 + 12*s.Spin, 380 + 200*ChirpMass(s.M1, s.M2)/30
}

// Synthesize returns mono samples in [-1, 1].
func Synthesize(s Spec) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	n := int(float64(s.SampleRate) * s.Duration)
	rate := float64(s.SampleRate)
	f0, f1 := s.Band()

	out := make([]float64, n)
	phase, peak := 0.0, 0.0
	for i := range out {
		tau := float64(i) / rate / s.Duration
		freq := f0 + math.Pow(tau, 1.6)*(f1-f0)
		phase += 2 * math.Pi * freq / rate

		env := math.Pow(tau, 1.8) * math.Exp(-1.05*(1-tau))
		v := env * (math.Sin(phase) + 0.2*math.Sin(2*phase))
		out[i] = v
		peak = math.Max(peak, math.Abs(v))
	}

	if peak > 0 {
		gain := 0.9 * s.Volume / peak
		for i := range out {
			out[i] *= gain
		}
	}

	if s.Rumble {
		for i := range out {
			t := float64(i) / rate
			out[i] += 0.15 * math.Sin(2*math.Pi*10*t) * math.Exp(-t)
		}
	}

	for i, v := range out {
		out[i] = math.Max(-1, math.Min(1, v))
	}
	return out, nil
}
