package physics

const (
	G         = 6.67430e-11
	C         = 2.99792458e8
	Hbar      = 1.054571817e-34
	SolarMass = 1.98847e30

	// SecondsPerSolarMass converts geometric time (units of M☉) to seconds.
	SecondsPerSolarMass = 4.92549095e-6
)
