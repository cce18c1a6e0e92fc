// Package viz draws a running world in the terminal.
//
// Parts are rendered as wireframes of their polyhedra on a Braille canvas,
// next to a panel of energies and contact counts and an energy history plot.
// The program is built on Bubble Tea.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Rebuild the scene from its config
//	.     - Single step while paused
//	Arrows/hjkl - Orbit the camera
//	+/-   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
