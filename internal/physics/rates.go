package physics

import "math"

func SchwarzschildRadius(mass float64) float64 {
	return 2 * G * mass / (C * C)
}

func GravitationalAcceleration(mass, r float64) float64 {
	return G * mass / (r * r)
}

// ScreenedForce is exactly zero for r <= 0.
func ScreenedForce(mass, r, rQ, coupling float64) float64 {
	if r <= 0 {
		return 0.0
	}
	return coupling * (G * mass / (r * r)) * math.Exp(-r/rQ)
}

func MassLossRate(mass, decayScale float64) float64 {
	return -decayScale * (Hbar * C * C / G) / (mass * mass)
}

func QuantumDensity(rho0, r, rQ float64) float64 {
	return rho0 * math.Exp(-r/rQ)
}

func SphereVolume(r float64) float64 {
	return 4.0 / 3.0 * math.Pi * r * r * r
}

func TransitionFunction(rho, volume, dRdt, lambda float64) float64 {
	return rho*volume - lambda*dRdt
}

// HawkingTemperature returns the black-body temperature of a mass in kelvin.
func HawkingTemperature(mass float64) float64 {
	const kB = 1.380649e-23
	return Hbar * C * C * C / (8 * math.Pi * G * mass * kB)
}
