// Package viz renders trajectories in the terminal.
//
// [PlotSeries] and [PlotTransition] draw a finished run with asciigraph.
// [Model] is the interactive parameter surface built on Bubble Tea: it
// consumes an integrator trajectory a batch of steps per frame.
//
// # Key Bindings
//
//	j/k   - Select parameter
//	h/l   - Nudge parameter (log scale)
//	e     - Toggle evaporation
//	s     - Start a run
//	r     - Reset
//	q     - Quit
package viz
