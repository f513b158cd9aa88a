// Package viz draws the swarm live in the terminal.
//
// The package implements the TUI using the Bubble Tea framework:
//
//   - [Model]: steps the swarm on every tick and follows the mouse
//   - [Canvas]: braille renderer with per-cell colour and a fading clear
//   - Theme selection with 4 built-in colour schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the swarm and parameters
//	C     - Release the pointer (curve returns to the canvas center)
//	Tab   - Select the next parameter, Up/Down tune it by 5%
//	T     - Cycle colour themes
//	S     - Save an SVG snapshot of the recent frames
//	G     - Toggle GIF recording
//	?     - Full help
//
// # Recording
//
// Snapshots and recordings are written to Options.OutDir, named after the
// frame they were taken at.
package viz
