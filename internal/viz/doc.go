// Package viz renders vehicle runs: a live Bubble Tea view with a braille
// track canvas and an ASCII speed chart, image plots (PNG, SVG, PDF) and
// interactive HTML pages of stored results.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	↑ ↓   - Nudge surge thrusters
//	← →   - Nudge yaw thrusters
//	T     - Cycle color themes
//	?     - Show help
package viz
