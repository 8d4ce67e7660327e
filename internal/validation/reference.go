// Package validation compares simulated runs against closed-form solutions.
package validation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/kinematics"
)

// SteadySpeed solves lin·v + quad·|v|·v = force for v.
func SteadySpeed(force, lin, quad float64) float64 {
	if quad == 0 {
		return force / lin
	}
	f := math.Abs(force)
	v := (-lin + math.Sqrt(lin*lin+4*quad*f)) / (2 * quad)
	return math.Copysign(v, force)
}

// YawAngle is the heading after spinning at a constant rate from zero.
func YawAngle(rate, t float64) float64 {
	return kinematics.NormalizeAngle(rate * t)
}

// Nutation is the torque-free motion of an axisymmetric body with
// transverse inertia Jt and axial inertia J3, starting at identity
// attitude with body rates W0.
type Nutation struct {
	Jt, J3 float64
	W0     r3.Vec
}

// Momentum is the inertial angular momentum, fixed for all t.
func (n Nutation) Momentum() r3.Vec {
	return r3.Vec{X: n.Jt * n.W0.X, Y: n.Jt * n.W0.Y, Z: n.J3 * n.W0.Z}
}

// BodyRate is the rate at which the transverse rate vector turns in the
// body frame.
func (n Nutation) BodyRate() float64 {
	return n.W0.Z * (n.Jt - n.J3) / n.Jt
}

// InertialRate is the precession rate about the momentum vector.
func (n Nutation) InertialRate() float64 {
	return r3.Norm(n.Momentum()) / n.Jt
}

func (n Nutation) AngularVelocity(t float64) r3.Vec {
	s, c := math.Sincos(n.BodyRate() * t)
	return r3.Vec{
		X: n.W0.X*c + n.W0.Y*s,
		Y: n.W0.Y*c - n.W0.X*s,
		Z: n.W0.Z,
	}
}

// Orientation is the body-to-inertial attitude: a rotation about the
// momentum vector followed by a spin about the body symmetry axis.
func (n Nutation) Orientation(t float64) quat.Number {
	h := r3.Unit(n.Momentum())
	sb, cb := math.Sincos(n.InertialRate() * t / 2)
	sa, ca := math.Sincos(n.BodyRate() * t / 2)
	qh := quat.Number{Real: cb, Imag: h.X * sb, Jmag: h.Y * sb, Kmag: h.Z * sb}
	qz := quat.Number{Real: ca, Kmag: sa}
	return quat.Mul(qh, qz)
}

// momentumNorm is |J·ω| for a diagonal body inertia.
func momentumNorm(j [3]float64, w []float64) float64 {
	h := make([]float64, 3)
	floats.MulTo(h, j[:], w[:3])
	return floats.Norm(h, 2)
}
