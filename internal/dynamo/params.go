package dynamo

import (
	"fmt"
	"sort"
)

// GetParams exposes the tunable coefficients by name.
func (p Params) GetParams() map[string]float64 {
	evap := 0.0
	if p.Evaporation {
		evap = 1.0
	}
	return map[string]float64{
		"coupling":     p.Coupling,
		"test_mass":    p.TestMass,
		"rq":           p.QuantumRadius,
		"lambda":       p.Lambda,
		"rho0":         p.DensityScale,
		"k_scale":      p.DecayScale,
		"threshold":    p.Threshold,
		"evaporation":  evap,
		"r_min":        p.RadiusMin,
		"m_min":        p.MassMin,
		"radius_scale": p.RadiusScale,
		"dt":           p.Dt,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "coupling":
		p.Coupling = value
	case "test_mass":
		p.TestMass = value
	case "rq":
		p.QuantumRadius = value
	case "lambda":
		p.Lambda = value
	case "rho0":
		p.DensityScale = value
	case "k_scale":
		p.DecayScale = value
	case "threshold":
		p.Threshold = value
	case "evaporation":
		p.Evaporation = value != 0
	case "r_min":
		p.RadiusMin = value
	case "m_min":
		p.MassMin = value
	case "radius_scale":
		p.RadiusScale = value
	case "dt":
		p.Dt = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, 12)
	for name := range DefaultParams().GetParams() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
