package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qgsim/internal/config"
	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/metrics"
	"github.com/san-kum/qgsim/internal/sim"
	"github.com/san-kum/qgsim/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run, described as a preset plus overrides. Params
// uses the names of dynamo.ParamNames.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Preset   string             `yaml:"preset"`
	Duration float64            `yaml:"duration,omitempty"`
	Mass     float64            `yaml:"mass,omitempty"`
	Radius   float64            `yaml:"radius,omitempty"`
	Params   map[string]float64 `yaml:"params,omitempty"`
	Save     bool               `yaml:"save"`
}

type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (s ScenarioStep) resolve() (*config.Config, dynamo.Params, error) {
	name := s.Preset
	if name == "" {
		name = "sgr-a"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, dynamo.Params{}, fmt.Errorf("unknown preset: %s", name)
	}

	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Mass > 0 {
		cfg.Initial.Mass = s.Mass
	}
	if s.Radius > 0 {
		cfg.Initial.Radius = s.Radius
	}

	p := cfg.Params()
	for k, v := range s.Params {
		if err := p.SetParam(k, v); err != nil {
			return nil, dynamo.Params{}, err
		}
	}
	if err := p.Admits(cfg.InitialState()); err != nil {
		return nil, dynamo.Params{}, err
	}
	return cfg, p, nil
}

func runOnce(ctx context.Context, p dynamo.Params, s0 dynamo.State, simCfg sim.Config) (*sim.Result, error) {
	integ, err := dynamo.NewIntegrator(p)
	if err != nil {
		return nil, err
	}

	runner := sim.New(integ)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}
	return runner.Run(ctx, s0, simCfg)
}

// RunScenario executes all steps in order. Steps marked Save are written to
// st when it is non-nil. Results gathered before a failing step are
// returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		label := step.Name
		if label == "" {
			label = fmt.Sprintf("step %d", i+1)
		}

		cfg, p, err := step.resolve()
		if err != nil {
			return results, fmt.Errorf("%s: %w", label, err)
		}

		result, err := runOnce(ctx, p, cfg.InitialState(), cfg.SimConfig())
		if err != nil {
			return results, fmt.Errorf("%s run: %w", label, err)
		}

		sr := StepResult{Name: label, Result: result}
		if step.Save && st != nil {
			sr.RunID, err = st.Save(storage.NewMetadata(cfg.Preset, p, cfg.Duration, result), result.Samples)
			if err != nil {
				return results, fmt.Errorf("%s save: %w", label, err)
			}
		}

		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial mass and radius of Base by a
// uniform relative amount in [-Perturbation, Perturbation].
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type TrialResult struct {
	TrialID     int
	Mass        float64
	Radius      float64
	Outcome     sim.Outcome
	CrossedTime float64
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]TrialResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", dynamo.ErrConfiguration, cfg.NumTrials)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation >= 1 {
		return nil, fmt.Errorf("%w: perturbation must be within [0, 1), got %g", dynamo.ErrConfiguration, cfg.Perturbation)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	p := cfg.Base.Params()
	base := cfg.Base.InitialState()
	simCfg := cfg.Base.SimConfig()
	results := make([]TrialResult, 0, cfg.NumTrials)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		mass := base.Mass * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		radius := base.Radius * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		s0 := dynamo.NewState(math.Max(mass, p.MassMin), math.Max(radius, p.RadiusMin))

		result, err := runOnce(ctx, p, s0, simCfg)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, TrialResult{
			TrialID:     trial,
			Mass:        s0.Mass,
			Radius:      s0.Radius,
			Outcome:     result.Outcome,
			CrossedTime: result.CrossedTime,
		})
	}

	return results, nil
}

// MonteCarloStats counts trials per outcome.
func MonteCarloStats(results []TrialResult) map[sim.Outcome]int {
	counts := make(map[sim.Outcome]int)
	for _, r := range results {
		counts[r.Outcome]++
	}
	return counts
}
