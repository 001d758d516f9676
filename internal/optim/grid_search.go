package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/metrics"
	"github.com/san-kum/qgsim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no parameter combination produced a finite score")

// Objective scores a finished run. Lower is better.
type Objective func(*sim.Result) float64

// EarliestCrossing scores a run by the time of its first crossing. Runs that
// never cross score +Inf.
func EarliestCrossing(r *sim.Result) float64 {
	if r.CrossedAt < 0 {
		return math.Inf(1)
	}
	return r.CrossedTime
}

// MetricObjective scores a run by one of its recorded metrics.
func MetricObjective(name string) Objective {
	return func(r *sim.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok || math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	var probe dynamo.Params
	for _, name := range params {
		if err := probe.SetParam(name, 0); err != nil {
			return nil, err
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs every combination of the grid from s0 and returns the best
// one. Combinations rejected by validation are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base dynamo.Params,
	s0 dynamo.State,
	cfg sim.Config,
	objective Objective,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, s0, cfg, objective, &best, &bestParams); err != nil {
		return nil, math.Inf(1), err
	}
	if bestParams == nil {
		return nil, best, ErrNoCandidate
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base dynamo.Params,
	s0 dynamo.State,
	cfg sim.Config,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		p := base
		for k, v := range current {
			p.SetParam(k, v)
		}

		integ, err := dynamo.NewIntegrator(p)
		if err != nil {
			return nil
		}
		runner := sim.New(integ)
		for _, m := range metrics.Defaults() {
			runner.AddMetric(m)
		}

		result, err := runner.Run(ctx, s0, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}

		val := objective(result)
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, s0, cfg, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
