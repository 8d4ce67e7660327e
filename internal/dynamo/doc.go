// Package dynamo provides core simulation primitives shared by the vehicle
// model, the integrators and the scenario runner.
//
//   - [State]: vector representing system state
//   - [System]: ODE right-hand side returning a derivative and a corrected state
//   - [Integrator]: fixed-step numerical integrator
//   - [Controller]: feedback controller producing raw actuator commands
//   - [Metric]: scalar accumulated over a run
//
// # Corrected states
//
// A [System] may normalize the state it is evaluated at (angle wrapping is
// the common case). Integrators continue from the corrected state returned
// by the first evaluation of each step rather than from the caller's input.
//
// # Thread Safety
//
// Systems and integrators keep scratch buffers and are NOT thread-safe.
// Run parallel simulations on independent instances.
package dynamo
