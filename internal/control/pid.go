package control

import (
	"fmt"
	"math"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/kinematics"
)

// PID tracks one state entry and drives one thruster slot of a
// Dim-long command vector.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	Index  int
	Output int
	Dim    int
	// Limit clamps |u| when positive.
	Limit float64
	// Angular wraps the error into [-π, π] for attitude setpoints.
	Angular bool

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(index, output, dim int, kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Index:  index,
		Output: output,
		Dim:    dim,
		first:  true,
	}
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, p.Dim)
	if p.Index >= len(x) || p.Output >= p.Dim {
		return u
	}

	err := p.Target - x[p.Index]
	if p.Angular {
		err = kinematics.NormalizeAngle(err)
	}

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		u[p.Output] = p.clamp(p.Kp * err)
		return u
	}

	out := p.Kp * err
	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt
		out += p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t
	}
	u[p.Output] = p.clamp(out)
	return u
}

func (p *PID) clamp(v float64) float64 {
	if p.Limit <= 0 {
		return v
	}
	return math.Max(-p.Limit, math.Min(p.Limit, v))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	default:
		return fmt.Errorf("%w: unknown PID parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}

var _ dynamo.Configurable = (*PID)(nil)
