// Package dynamo provides the scalar collapse integrator.
//
// The package advances three coupled scalars (mass, radius and the
// transition diagnostic) with explicit fixed-step updates:
//
//   - [State]: the mutable run state, passed explicitly into every step
//   - [Params]: immutable run configuration
//   - [Step]: pure one-step transition, (state, params) -> (state, crossed)
//   - [Integrator]: binds params and produces a lazy [Trajectory]
//
// # Example
//
//	p := dynamo.DefaultParams()
//	integ, err := dynamo.NewIntegrator(p)
//	if err != nil {
//	    return err
//	}
//	traj := integ.Trajectory(dynamo.NewState(m0, r0), steps)
//	for s := range traj.All() {
//	    fmt.Println(s.Time, s.Transition)
//	}
//
// # Thread Safety
//
// [Step] reads only its arguments and returns a new value, so independent
// states may be advanced from separate goroutines. A single [Trajectory]
// is NOT safe for concurrent use and must be stepped sequentially because
// each step depends on the previous radius.
package dynamo
