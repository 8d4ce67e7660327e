// Package vehicle implements a 6-DOF underwater vehicle plant model.
//
// The model integrates the body-frame equations of motion
//
//	M(ν) ν̇ = τ(u) − D(ν) ν − g(η) [− C(ν) ν]
//
// where M is the diagonal rigid-body plus added-mass inertia, D the
// linear-plus-quadratic damping, g the gravity/buoyancy restoring wrench and
// τ the thruster wrench produced through the control matrix. The Coriolis
// term C is only present for [ComplexModel].
//
// The 12-element state is laid out as
//
//	[u v w p q r | x y z | φ θ ψ]
//
// with body-frame velocities first, then position and ZYX Euler angles.
// How the pose part is propagated is decided by the [Frame] strategy.
//
// # Commands
//
// Control reaches the model only through [Vehicle.ApplyPWM] and
// [Vehicle.ApplyRPM]. Each call rebuilds the per-thruster effort buffer and
// advances the state by one sampling period split into a fixed number of
// sub-steps.
//
// # Faults
//
// Configuration problems (control matrix shape, thruster mapping) are
// returned as errors. A non-positive inertia entry at evaluation time and
// the Euler-rate inverse at gimbal lock are programmer errors and panic.
package vehicle
