package config

import "sort"

var Presets = map[string]func() *Config{
	// Sagittarius A*-like hole from the original slider defaults.
	"sgr-a":       DefaultConfig,
	"stellar":     stellarPreset,
	"toy":         toyPreset,
	"evaporating": evaporatingPreset,
}

func stellarPreset() *Config {
	cfg := DefaultConfig()
	cfg.Preset = "stellar"
	cfg.Initial = InitialConfig{MassSolar: 30, RadiusRs: 3}
	cfg.Physics.RQRs = 0.5
	cfg.Physics.RMin = 1.0
	return cfg
}

func toyPreset() *Config {
	cfg := DefaultConfig()
	cfg.Preset = "toy"
	cfg.Duration = 0.01
	cfg.Initial = InitialConfig{Mass: 1e5, Radius: 1.0}
	cfg.Physics.RQ = 1e-1
	cfg.Physics.RQRs = 0
	cfg.Physics.Lambda = 0.1
	cfg.Physics.Coupling = 1.0
	cfg.Physics.TestMass = 1.0
	cfg.Physics.Evaporation = false
	cfg.Physics.RMin = 1e-6
	cfg.Physics.MMin = 0
	return cfg
}

func evaporatingPreset() *Config {
	cfg := toyPreset()
	cfg.Preset = "evaporating"
	cfg.Duration = 0.05
	cfg.Physics.Evaporation = true
	cfg.Physics.KScale = 1e30
	cfg.Physics.MMin = 1e3
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
