// Package physics provides the closed-form rate functions that drive the
// collapse model.
//
// All functions are plain scalar formulas over SI values:
//
//   - [GravitationalAcceleration]: Newtonian pull at radius r
//   - [ScreenedForce]: Newtonian force suppressed beyond the screening radius
//   - [MassLossRate]: heuristic evaporation rate
//   - [TransitionFunction]: density and curvature-rate diagnostic
//
// The functions never panic. Degenerate inputs such as a zero mass produce
// non-finite results that callers are expected to detect.
package physics
