package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/qgsim/internal/dynamo"
)

type Variant struct {
	Label  string
	Params dynamo.Params
}

// Vary builds one variant per value of the named parameter.
func Vary(base dynamo.Params, name string, values []float64) ([]Variant, error) {
	variants := make([]Variant, 0, len(values))
	for _, v := range values {
		p := base
		if err := p.SetParam(name, v); err != nil {
			return nil, err
		}
		variants = append(variants, Variant{Label: fmt.Sprintf("%s=%g", name, v), Params: p})
	}
	return variants, nil
}

// Sweep runs every variant from the same initial state concurrently. Each
// run owns its state, so no synchronisation beyond the final join is
// needed. Results keep the order of variants.
func Sweep(ctx context.Context, variants []Variant, s0 dynamo.State, cfg Config, newMetrics func() []Metric) ([]*Result, error) {
	results := make([]*Result, len(variants))
	errs := make([]error, len(variants))

	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(idx int, v Variant) {
			defer wg.Done()

			integ, err := dynamo.NewIntegrator(v.Params)
			if err != nil {
				errs[idx] = fmt.Errorf("%s: %w", v.Label, err)
				return
			}

			runner := New(integ)
			if newMetrics != nil {
				for _, m := range newMetrics() {
					runner.AddMetric(m)
				}
			}

			results[idx], errs[idx] = runner.Run(ctx, s0, cfg)
		}(i, v)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
