// Package waveform converts geometric-unit waveform times to seconds in the
// detector frame.
package waveform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/qgsim/internal/physics"
)

// DefaultTotalMass is the total binary mass in solar masses used when none
// is given.
const DefaultTotalMass = 60.0

var ErrMissingTimes = errors.New("waveform: missing time array \"t\"")

// Waveform holds the time axis of a geometric waveform file. Other keys in
// the file are ignored.
type Waveform struct {
	T []float64 `json:"t"`
}

// ScaleTimes converts times in units of total mass M to seconds.
func ScaleTimes(times []float64, totalMassSolar float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = t * totalMassSolar * physics.SecondsPerSolarMass
	}
	return out
}

func Decode(r io.Reader) (*Waveform, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("waveform: decode: %w", err)
	}

	t, ok := raw["t"]
	if !ok {
		return nil, ErrMissingTimes
	}

	w := &Waveform{}
	if err := json.Unmarshal(t, &w.T); err != nil {
		return nil, fmt.Errorf("waveform: time array: %w", err)
	}
	return w, nil
}

func Load(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Head returns at most n leading values.
func Head(values []float64, n int) []float64 {
	if n > len(values) {
		n = len(values)
	}
	if n < 0 {
		n = 0
	}
	return values[:n]
}
