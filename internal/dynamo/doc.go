// Package dynamo provides the core primitives shared by the swarm packages.
//
//   - [Vec2]: immutable 2D value type
//   - [Drawable]: render contract (position, colour, radius)
//   - [Configurable]: runtime parameter tuning
//   - [Metric], [Observer]: per-frame instrumentation
//   - [Config], [Result]: headless run configuration and output
//
// # Example
//
//	s := sim.NewSwarm(params, pointer)
//	result, _ := sim.Run(ctx, s, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Nothing in this package or its consumers is safe for concurrent use.
// A swarm is stepped from exactly one goroutine.
package dynamo
