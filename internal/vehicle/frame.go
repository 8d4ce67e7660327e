package vehicle

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/kinematics"
)

type FrameKind string

const (
	BodyFixed  FrameKind = "body"
	EarthFixed FrameKind = "earth"
)

// Frame decides how the pose part of the state is propagated from the
// body-frame velocity.
type Frame interface {
	Kind() FrameKind
	PoseRates(nu []float64, e kinematics.Euler) [NumDOF]float64
}

// BodyFrame integrates the body velocities directly into position and
// Euler angles.
type BodyFrame struct{}

func (BodyFrame) Kind() FrameKind { return BodyFixed }

func (BodyFrame) PoseRates(nu []float64, _ kinematics.Euler) [NumDOF]float64 {
	var r [NumDOF]float64
	copy(r[:], nu)
	return r
}

// EarthFrame rotates the body velocity into earth-fixed position and Euler
// angle rates. It panics at gimbal lock.
type EarthFrame struct{}

func (EarthFrame) Kind() FrameKind { return EarthFixed }

func (EarthFrame) PoseRates(nu []float64, e kinematics.Euler) [NumDOF]float64 {
	var out mat.VecDense
	out.MulVec(kinematics.Jacobian(e), mat.NewVecDense(NumDOF, nu[:NumDOF]))
	var r [NumDOF]float64
	for i := range r {
		r[i] = out.AtVec(i)
	}
	return r
}

// NewFrame returns the strategy for kind; the empty kind selects the body
// frame.
func NewFrame(kind FrameKind) (Frame, error) {
	switch kind {
	case "", BodyFixed:
		return BodyFrame{}, nil
	case EarthFixed:
		return EarthFrame{}, nil
	}
	return nil, fmt.Errorf("%w: unknown frame %q", dynamo.ErrParameterBounds, kind)
}
