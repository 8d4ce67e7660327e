package vehicle

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/kinematics"
)

// Wrench is a body-frame force/torque 6-vector ordered by DOF.
type Wrench [NumDOF]float64

func (w Wrench) Vec() *mat.VecDense {
	return mat.NewVecDense(NumDOF, w[:])
}

func (w Wrench) Force() r3.Vec  { return r3.Vec{X: w[Surge], Y: w[Sway], Z: w[Heave]} }
func (w Wrench) Torque() r3.Vec { return r3.Vec{X: w[Roll], Y: w[Pitch], Z: w[Yaw]} }

func wrenchFromVec(v mat.Vector) Wrench {
	var w Wrench
	for i := range w {
		w[i] = v.AtVec(i)
	}
	return w
}

// Restoring computes the gravity and buoyancy wrench from either attitude
// representation. Both must give the same wrench for the same attitude.
type Restoring interface {
	EulerRestoring(e kinematics.Euler) Wrench
	QuaternionRestoring(q quat.Number) Wrench
}

// RigidBody evaluates the state-dependent matrices of the equations of
// motion from a parameter set.
type RigidBody struct {
	p *Parameters
}

var _ Restoring = RigidBody{}

func NewRigidBody(p *Parameters) RigidBody {
	return RigidBody{p: p}
}

// InertiaMatrix picks the positive mass coefficient of a DOF when its
// velocity is above the parameter set's zero threshold.
func (rb RigidBody) InertiaMatrix(nu []float64) *mat.DiagDense {
	th := rb.p.massThreshold()
	m := mat.NewDiagDense(NumDOF, nil)
	for i := 0; i < NumDOF; i++ {
		m.SetDiag(i, rb.p.DOF[i].Mass.Select(nu[i] > th))
	}
	return m
}

// DampingMatrix is lin + quad·|v| per DOF.
func (rb RigidBody) DampingMatrix(nu []float64) *mat.DiagDense {
	d := mat.NewDiagDense(NumDOF, nil)
	for i := 0; i < NumDOF; i++ {
		pos := nu[i] > DampingSelectThreshold
		row := rb.p.DOF[i]
		d.SetDiag(i, row.LinearDamping.Select(pos)+row.QuadraticDamping.Select(pos)*math.Abs(nu[i]))
	}
	return d
}

func (rb RigidBody) weightBuoyancy() (w, b float64) {
	return rb.p.EffectiveWeight(), rb.p.EffectiveBuoyancy()
}

func (rb RigidBody) EulerRestoring(e kinematics.Euler) Wrench {
	w, b := rb.weightBuoyancy()
	cg, cb := rb.p.CenterOfGravity, rb.p.CenterOfBuoyancy

	sf, cf := math.Sin(e.Roll), math.Cos(e.Roll)
	st, ct := math.Sin(e.Pitch), math.Cos(e.Pitch)

	net := w - b
	mx := cg.X*w - cb.X*b
	my := cg.Y*w - cb.Y*b
	mz := cg.Z*w - cb.Z*b

	return Wrench{
		net * st,
		-net * ct * sf,
		-net * ct * cf,
		-my*ct*cf + mz*ct*sf,
		mz*st + mx*ct*cf,
		-mx*ct*sf - my*st,
	}
}

func (rb RigidBody) QuaternionRestoring(q quat.Number) Wrench {
	w, b := rb.weightBuoyancy()
	cg, cb := rb.p.CenterOfGravity, rb.p.CenterOfBuoyancy

	qw, qx, qy, qz := q.Real, q.Imag, q.Jmag, q.Kmag
	// sin θ, cos θ sin φ and cos θ cos φ in quaternion form
	st := 2 * (qw*qy - qx*qz)
	ctsf := 2 * (qw*qx + qy*qz)
	ctcf := qw*qw - qx*qx - qy*qy + qz*qz

	net := w - b
	mx := cg.X*w - cb.X*b
	my := cg.Y*w - cb.Y*b
	mz := cg.Z*w - cb.Z*b

	return Wrench{
		net * st,
		-net * ctsf,
		-net * ctcf,
		-my*ctcf + mz*ctsf,
		mz*st + mx*ctcf,
		-mx*ctsf - my*st,
	}
}

// CoriolisWrench is C(ν)ν for a diagonal inertia with the origin at the
// center of gravity.
func CoriolisWrench(inertia mat.Matrix, nu []float64) Wrench {
	v := r3.Vec{X: nu[Surge], Y: nu[Sway], Z: nu[Heave]}
	w := r3.Vec{X: nu[Roll], Y: nu[Pitch], Z: nu[Yaw]}
	p := r3.Vec{X: inertia.At(0, 0) * v.X, Y: inertia.At(1, 1) * v.Y, Z: inertia.At(2, 2) * v.Z}
	h := r3.Vec{X: inertia.At(3, 3) * w.X, Y: inertia.At(4, 4) * w.Y, Z: inertia.At(5, 5) * w.Z}

	f := r3.Cross(w, p)
	m := r3.Add(r3.Cross(v, p), r3.Cross(w, h))
	return Wrench{f.X, f.Y, f.Z, m.X, m.Y, m.Z}
}
