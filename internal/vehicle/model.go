package vehicle

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/kinematics"
)

// StateDim is the length of the vehicle state vector.
const StateDim = 12

// State vector offsets.
const (
	IdxVelocity = 0
	IdxPosition = 6
	IdxEuler    = 9
)

// Snapshot is the kinematic picture cached by the last derivative
// evaluation.
type Snapshot struct {
	Position            r3.Vec
	Euler               kinematics.Euler
	LinearVelocity      r3.Vec
	AngularVelocity     r3.Vec
	LinearAcceleration  r3.Vec
	AngularAcceleration r3.Vec
}

// Model is the equations-of-motion right-hand side. It implements
// dynamo.System.
type Model struct {
	params  Parameters
	body    RigidBody
	frame   Frame
	control *mat.Dense
	snap    Snapshot
	log     zerolog.Logger
}

var _ dynamo.System = (*Model)(nil)

func NewModel(p Parameters, log zerolog.Logger) (*Model, error) {
	m := &Model{log: log}
	if err := m.SetParameters(p); err != nil {
		return nil, err
	}
	return m, nil
}

// SetParameters validates and installs a parameter set. The thruster count
// may only change before the first evaluation; Vehicle enforces that.
func (m *Model) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	frame, err := NewFrame(p.Frame)
	if err != nil {
		return err
	}
	m.params = p.Clone()
	m.body = NewRigidBody(&m.params)
	m.frame = frame
	m.control = m.params.ControlMatrixDense()
	return nil
}

func (m *Model) Parameters() Parameters { return m.params.Clone() }
func (m *Model) Body() RigidBody        { return m.body }
func (m *Model) Frame() Frame           { return m.frame }
func (m *Model) Snapshot() Snapshot     { return m.snap }

func (m *Model) StateDim() int   { return StateDim }
func (m *Model) ControlDim() int { return m.params.Thrusters() }

func (m *Model) Derive(x dynamo.State, u dynamo.Control, _ float64) (dynamo.State, dynamo.State) {
	if len(x) != StateDim {
		m.fault(fmt.Errorf("%w: state has %d entries, want %d", dynamo.ErrDimensionMismatch, len(x), StateDim))
	}

	fixed := x.Clone()
	for i := IdxEuler; i < StateDim; i++ {
		fixed[i] = kinematics.WrapAngle(fixed[i])
	}
	nu := fixed[IdxVelocity:IdxPosition]
	att := kinematics.Euler{Roll: fixed[IdxEuler], Pitch: fixed[IdxEuler+1], Yaw: fixed[IdxEuler+2]}

	g := m.body.EulerRestoring(att)
	damping := m.body.DampingMatrix(nu)
	thrust := ThrusterWrench(m.control, u)
	inertia := m.body.InertiaMatrix(nu)
	inv := m.invertInertia(inertia)

	var rhs mat.VecDense
	rhs.MulVec(damping, mat.NewVecDense(NumDOF, nu))
	rhs.SubVec(thrust.Vec(), &rhs)
	rhs.SubVec(&rhs, g.Vec())
	if m.params.Model == ComplexModel {
		rhs.SubVec(&rhs, CoriolisWrench(inertia, nu).Vec())
	}

	var acc mat.VecDense
	acc.MulVec(inv, &rhs)

	rates := m.poseRates(nu, att)

	dx := make(dynamo.State, StateDim)
	for i := 0; i < NumDOF; i++ {
		dx[IdxVelocity+i] = acc.AtVec(i)
		dx[IdxPosition+i] = rates[i]
	}

	m.snap = Snapshot{
		Position:            r3.Vec{X: fixed[IdxPosition], Y: fixed[IdxPosition+1], Z: fixed[IdxPosition+2]},
		Euler:               att,
		LinearVelocity:      r3.Vec{X: nu[Surge], Y: nu[Sway], Z: nu[Heave]},
		AngularVelocity:     r3.Vec{X: nu[Roll], Y: nu[Pitch], Z: nu[Yaw]},
		LinearAcceleration:  r3.Vec{X: dx[Surge], Y: dx[Sway], Z: dx[Heave]},
		AngularAcceleration: r3.Vec{X: dx[Roll], Y: dx[Pitch], Z: dx[Yaw]},
	}

	return dx, fixed
}

func (m *Model) invertInertia(inertia *mat.DiagDense) *mat.DiagDense {
	inv := mat.NewDiagDense(NumDOF, nil)
	for i := 0; i < NumDOF; i++ {
		v := inertia.At(i, i)
		if v <= 0 {
			m.fault(fmt.Errorf("%w: %s entry %g", ErrNonPositiveInertia, DOF(i), v))
		}
		inv.SetDiag(i, 1/v)
	}
	return inv
}

// poseRates routes a frame singularity through fault so it is logged
// before the panic propagates.
func (m *Model) poseRates(nu []float64, att kinematics.Euler) [NumDOF]float64 {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			m.fault(err)
		}
	}()
	return m.frame.PoseRates(nu, att)
}

func (m *Model) fault(err error) {
	m.log.Error().Err(err).Msg("equations of motion fault")
	panic(err)
}
