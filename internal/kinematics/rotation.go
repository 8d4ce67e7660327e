package kinematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// BodyToInertial returns R_IB, mapping body-frame vectors into the
// inertial frame.
func BodyToInertial(e Euler) *mat.Dense {
	cf, sf := math.Cos(e.Roll), math.Sin(e.Roll)
	ct, st := math.Cos(e.Pitch), math.Sin(e.Pitch)
	cp, sp := math.Cos(e.Yaw), math.Sin(e.Yaw)

	return mat.NewDense(3, 3, []float64{
		cp * ct, -sp*cf + cp*st*sf, sp*sf + cp*cf*st,
		sp * ct, cp*cf + sf*st*sp, -cp*sf + st*sp*cf,
		-st, ct * sf, ct * cf,
	})
}

// InertialToBody returns R_BI = R_IBᵀ.
func InertialToBody(e Euler) *mat.Dense {
	var r mat.Dense
	r.CloneFrom(BodyToInertial(e).T())
	return &r
}

// EulerRateJacobian maps Euler angle rates to body angular rates.
func EulerRateJacobian(e Euler) *mat.Dense {
	cf, sf := math.Cos(e.Roll), math.Sin(e.Roll)
	ct, st := math.Cos(e.Pitch), math.Sin(e.Pitch)

	return mat.NewDense(3, 3, []float64{
		1, 0, -st,
		0, cf, ct * sf,
		0, -sf, ct * cf,
	})
}

// InverseEulerRateJacobian maps body angular rates to Euler angle rates.
// It panics at gimbal lock, where the map does not exist.
func InverseEulerRateJacobian(e Euler) *mat.Dense {
	ct := math.Cos(e.Pitch)
	if math.Abs(ct) < GimbalLockEpsilon {
		panic(fmt.Errorf("%w: euler rate jacobian at pitch %.6f rad", dynamo.ErrSingular, e.Pitch))
	}
	cf, sf := math.Cos(e.Roll), math.Sin(e.Roll)
	tt := math.Tan(e.Pitch)

	return mat.NewDense(3, 3, []float64{
		1, sf * tt, cf * tt,
		0, cf, -sf,
		0, sf / ct, cf / ct,
	})
}

// Jacobian assembles diag(R_IB, T(Θ)), mapping body velocity to
// earth-fixed pose rates.
func Jacobian(e Euler) *mat.Dense {
	return blockDiag(BodyToInertial(e), InverseEulerRateJacobian(e))
}

// WrenchTransform maps a body-frame wrench to the generalized force
// conjugate to the pose rates, J⁻ᵀ = diag(R_IB, Qᵀ) with Q the Euler-rate
// Jacobian. It is defined everywhere.
func WrenchTransform(e Euler) *mat.Dense {
	return blockDiag(BodyToInertial(e), EulerRateJacobian(e).T())
}

func blockDiag(a, b mat.Matrix) *mat.Dense {
	j := mat.NewDense(6, 6, nil)
	j.Slice(0, 3, 0, 3).(*mat.Dense).Copy(a)
	j.Slice(3, 6, 3, 6).(*mat.Dense).Copy(b)
	return j
}

// Rotate applies a unit quaternion to a vector, q v q*.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// MulVec3 multiplies a 3x3 matrix by a vector.
func MulVec3(m mat.Matrix, v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
