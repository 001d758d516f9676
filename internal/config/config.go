package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/physics"
	"github.com/san-kum/qgsim/internal/sim"
)

const (
	DefaultDt        = 1e-3
	DefaultDuration  = 10.0
	DefaultMassSolar = 4.3e6
	DefaultRadiusRs  = 10.0
	DefaultRQRs      = 5.0
	DefaultDataDir   = ".qgsim"
)

type Config struct {
	Preset   string        `yaml:"preset,omitempty"`
	Dt       float64       `yaml:"dt" env:"QGSIM_DT"`
	Duration float64       `yaml:"duration" env:"QGSIM_DURATION"`
	Initial  InitialConfig `yaml:"initial"`
	Physics  PhysicsConfig `yaml:"physics"`
	Run      RunConfig     `yaml:"run"`
}

// InitialConfig accepts either absolute SI values or the scaled values of
// the slider surface. Absolute values win when non-zero.
type InitialConfig struct {
	MassSolar float64 `yaml:"mass_solar,omitempty"`
	RadiusRs  float64 `yaml:"radius_rs,omitempty"`
	Mass      float64 `yaml:"mass,omitempty"`
	Radius    float64 `yaml:"radius,omitempty"`
}

type PhysicsConfig struct {
	Coupling    float64 `yaml:"coupling"`
	TestMass    float64 `yaml:"test_mass"`
	RQRs        float64 `yaml:"rq_rs,omitempty"`
	RQ          float64 `yaml:"rq,omitempty"`
	Lambda      float64 `yaml:"lambda"`
	Rho0        float64 `yaml:"rho0"`
	KScale      float64 `yaml:"k_scale"`
	Threshold   float64 `yaml:"threshold" env:"QGSIM_THRESHOLD"`
	Evaporation bool    `yaml:"evaporation"`
	RMin        float64 `yaml:"r_min"`
	MMin        float64 `yaml:"m_min"`
	RadiusScale float64 `yaml:"radius_scale"`
}

type RunConfig struct {
	StopOnTransition bool `yaml:"stop_on_transition"`
	HaltOnDegenerate bool `yaml:"halt_on_degenerate"`
}

// Env holds process-level settings that only come from the environment.
type Env struct {
	DataDir string `env:"QGSIM_DATA_DIR" envDefault:".qgsim"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Preset:   "sgr-a",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Initial: InitialConfig{
			MassSolar: DefaultMassSolar,
			RadiusRs:  DefaultRadiusRs,
		},
		Physics: PhysicsConfig{
			Coupling:    p.Coupling,
			TestMass:    p.TestMass,
			RQRs:        DefaultRQRs,
			Lambda:      p.Lambda,
			Rho0:        p.DensityScale,
			KScale:      p.DecayScale,
			Threshold:   p.Threshold,
			Evaporation: p.Evaporation,
			RMin:        p.RadiusMin,
			MMin:        p.MassMin,
			RadiusScale: p.RadiusScale,
		},
		Run: RunConfig{
			StopOnTransition: true,
			HaltOnDegenerate: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields tagged with env from the process environment.
func ApplyEnv(cfg *Config) error {
	return env.Parse(cfg)
}

func applyEnv(cfg *Config, opts env.Options) error {
	return env.ParseWithOptions(cfg, opts)
}

func LoadEnv() (Env, error) {
	return env.ParseAs[Env]()
}

func (c *Config) InitialMass() float64 {
	if c.Initial.Mass > 0 {
		return c.Initial.Mass
	}
	return c.Initial.MassSolar * physics.SolarMass
}

// SchwarzschildRadius is the radius of the initial mass, the unit of the
// scaled radius fields.
func (c *Config) SchwarzschildRadius() float64 {
	return physics.SchwarzschildRadius(c.InitialMass())
}

func (c *Config) InitialRadius() float64 {
	if c.Initial.Radius > 0 {
		return c.Initial.Radius
	}
	return c.Initial.RadiusRs * c.SchwarzschildRadius()
}

func (c *Config) QuantumRadius() float64 {
	if c.Physics.RQ > 0 {
		return c.Physics.RQ
	}
	return c.Physics.RQRs * c.SchwarzschildRadius()
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Coupling:      c.Physics.Coupling,
		TestMass:      c.Physics.TestMass,
		QuantumRadius: c.QuantumRadius(),
		Lambda:        c.Physics.Lambda,
		DensityScale:  c.Physics.Rho0,
		DecayScale:    c.Physics.KScale,
		Threshold:     c.Physics.Threshold,
		Evaporation:   c.Physics.Evaporation,
		RadiusMin:     c.Physics.RMin,
		MassMin:       c.Physics.MMin,
		RadiusScale:   c.Physics.RadiusScale,
		Dt:            c.Dt,
	}
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.NewState(c.InitialMass(), c.InitialRadius())
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		TimeMax:          c.Duration,
		StopOnTransition: c.Run.StopOnTransition,
		HaltOnDegenerate: c.Run.HaltOnDegenerate,
	}
}

// Validate checks the whole run description before any step is taken.
func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrConfiguration, c.Duration)
	}
	p := c.Params()
	if err := p.Validate(); err != nil {
		return err
	}
	return p.Admits(c.InitialState())
}
