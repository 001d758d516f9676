package viz

import (
	"errors"
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/qgsim/internal/dynamo"
)

var (
	ErrUnknownField = errors.New("viz: unknown field")
	ErrNoData       = errors.New("viz: no finite samples to plot")
)

// Fields lists the sample fields that can be plotted.
var Fields = []string{"mass", "radius", "transition"}

// Series extracts one field from samples, dropping non-finite values.
func Series(samples []dynamo.Sample, field string) ([]float64, error) {
	var get func(dynamo.Sample) float64
	switch field {
	case "mass":
		get = func(s dynamo.Sample) float64 { return s.Mass }
	case "radius":
		get = func(s dynamo.Sample) float64 { return s.Radius }
	case "transition":
		get = func(s dynamo.Sample) float64 { return s.Transition }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		v := get(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// scaleSeries divides values by a power of ten so axis labels stay short.
// The exponent is 0 for series that already fit.
func scaleSeries(values []float64, extra ...float64) ([]float64, int) {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	for _, v := range extra {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		return values, 0
	}

	exp := int(math.Floor(math.Log10(peak)))
	if exp > -3 && exp < 4 {
		return values, 0
	}

	div := math.Pow(10, float64(exp))
	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = v / div
	}
	return scaled, exp
}

func caption(field string, exp int) string {
	if exp == 0 {
		return field
	}
	return fmt.Sprintf("%s (x1e%d)", field, exp)
}

func PlotSeries(samples []dynamo.Sample, field string, width, height int) (string, error) {
	data, err := Series(samples, field)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrNoData
	}

	scaled, exp := scaleSeries(data)
	return asciigraph.Plot(scaled,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption(field, exp)),
	), nil
}

// PlotTransition draws the transition value with the threshold as a second,
// flat series.
func PlotTransition(samples []dynamo.Sample, threshold float64, width, height int) (string, error) {
	data, err := Series(samples, "transition")
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrNoData
	}

	scaled, exp := scaleSeries(data, threshold)
	line := make([]float64, len(scaled))
	for i := range line {
		line[i] = threshold / math.Pow(10, float64(exp))
	}

	return asciigraph.PlotMany([][]float64{scaled, line},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.Caption(caption("transition", exp)+" / threshold"),
	), nil
}
