// Package analysis inspects recorded swarm runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: spectrum of a sampled series via
//     go-dsp. The breathing scale has a period of 20π ≈ 62.8 frames.
//   - [PhasePortrait]: two series plotted against each other as ASCII.
//   - [Divergence]: exponential separation rate of two nudged swarms.
//
// A negative divergence means the springs pull nearby swarms together:
//
//	rate := analysis.Divergence(sim.DefaultParams(), 600, 1e-6)
//	if rate < 0 {
//	    // perturbations decay
//	}
package analysis
