// Package physics provides the spring point integrator and its composition
// into trailing chains.
//
//   - [SpringPoint]: a point that follows a target with a damped spring
//   - [Chain]: a lead spring point plus a trail of secondary points
//
// Coefficients are dimensionless per-tick multipliers, not physical units.
// A stable point needs elasticity and damping well below 2:
//
//	p := physics.NewSpringPoint(physics.DefaultSpringConfig())
//	p.Target = dynamo.V(10, 0)
//	for i := 0; i < 100; i++ {
//	    p.Update()
//	}
package physics
