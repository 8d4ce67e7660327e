package vehicle

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/integrators"
	"github.com/san-kum/uwvsim/internal/kinematics"
)

// Config fixes the timing and dimensions of a vehicle.
type Config struct {
	SamplingPeriod float64   `yaml:"sampling_period" json:"sampling_period"`
	SubSteps       int       `yaml:"sub_steps" json:"sub_steps"`
	InitialTime    float64   `yaml:"initial_time" json:"initial_time"`
	InitialState   []float64 `yaml:"initial_state" json:"initial_state"`
	// StateOrder and ControlOrder default to 12 and the thruster count.
	StateOrder   int `yaml:"state_order" json:"state_order"`
	ControlOrder int `yaml:"control_order" json:"control_order"`
}

type Option func(*Vehicle)

func WithIntegrator(i dynamo.Integrator) Option {
	return func(v *Vehicle) { v.integ = i }
}

func WithLogger(l zerolog.Logger) Option {
	return func(v *Vehicle) { v.log = l }
}

func WithObserver(o dynamo.Observer) Option {
	return func(v *Vehicle) { v.observers = append(v.observers, o) }
}

// Vehicle owns one model instance, its state and its control buffer. It is
// not safe for concurrent use.
type Vehicle struct {
	cfg       Config
	model     *Model
	integ     dynamo.Integrator
	state     dynamo.State
	control   dynamo.Control
	t         float64
	subSteps  int
	step      float64
	cycles    int
	log       zerolog.Logger
	observers []dynamo.Observer
}

func New(cfg Config, p Parameters, opts ...Option) (*Vehicle, error) {
	v := &Vehicle{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(v)
	}
	if v.integ == nil {
		v.integ = integrators.NewRK4()
	}

	if cfg.SamplingPeriod <= 0 {
		return nil, fmt.Errorf("%w: sampling period must be positive, got %g", dynamo.ErrParameterBounds, cfg.SamplingPeriod)
	}
	if cfg.StateOrder != 0 && cfg.StateOrder != StateDim {
		return nil, fmt.Errorf("%w: state order %d, want %d", dynamo.ErrDimensionMismatch, cfg.StateOrder, StateDim)
	}

	model, err := NewModel(p, v.log)
	if err != nil {
		return nil, err
	}
	v.model = model

	thrusters := model.ControlDim()
	if cfg.ControlOrder != 0 && cfg.ControlOrder != thrusters {
		return nil, fmt.Errorf("%w: control matrix has %d columns, control order is %d", dynamo.ErrDimensionMismatch, thrusters, cfg.ControlOrder)
	}
	if cfg.InitialState != nil && len(cfg.InitialState) != StateDim {
		return nil, fmt.Errorf("%w: initial state has %d entries, want %d", dynamo.ErrDimensionMismatch, len(cfg.InitialState), StateDim)
	}
	if err := v.resolveSubSteps(); err != nil {
		return nil, err
	}

	v.control = make(dynamo.Control, thrusters)
	v.Reset()

	v.log.Debug().
		Int("thrusters", thrusters).
		Int("sub_steps", v.subSteps).
		Float64("sampling_period", cfg.SamplingPeriod).
		Str("frame", string(model.Frame().Kind())).
		Msg("vehicle ready")
	return v, nil
}

// Reset restores the initial state and time and clears the control buffer.
func (v *Vehicle) Reset() {
	v.state = make(dynamo.State, StateDim)
	copy(v.state, v.cfg.InitialState)
	for i := range v.control {
		v.control[i] = 0
	}
	v.t = v.cfg.InitialTime
	v.cycles = 0
	v.refresh()
}

func (v *Vehicle) resolveSubSteps() error {
	n := v.cfg.SubSteps
	if sp := v.model.params.SimPerCycle; sp > 0 {
		n = sp
	}
	if n < 1 {
		return fmt.Errorf("%w: sub-steps must be at least 1, got %d", dynamo.ErrParameterBounds, n)
	}
	v.subSteps = n
	v.step = v.cfg.SamplingPeriod / float64(n)
	return nil
}

// SetParameters installs a new parameter set, effective at the next
// derivative evaluation. The thruster count cannot change.
func (v *Vehicle) SetParameters(p Parameters) error {
	if n := p.Thrusters(); n != len(v.control) {
		return fmt.Errorf("%w: control matrix has %d columns, vehicle has %d thrusters", dynamo.ErrDimensionMismatch, n, len(v.control))
	}
	prev := v.model.params
	if err := v.model.SetParameters(p); err != nil {
		return err
	}
	if err := v.resolveSubSteps(); err != nil {
		_ = v.model.SetParameters(prev)
		return err
	}
	v.log.Debug().Str("model", string(p.Model)).Str("frame", string(p.Frame)).Msg("parameters installed")
	return nil
}

// SetSamplingPeriod changes the control period; the sub-step length follows.
func (v *Vehicle) SetSamplingPeriod(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: sampling period must be positive, got %g", dynamo.ErrParameterBounds, dt)
	}
	v.cfg.SamplingPeriod = dt
	v.step = dt / float64(v.subSteps)
	v.log.Debug().Float64("sampling_period", dt).Float64("step", v.step).Msg("sampling period changed")
	return nil
}

// ApplyPWM converts PWM percentage commands to thrust and advances one
// sampling period.
func (v *Vehicle) ApplyPWM(m ThrusterMapping) error {
	if err := m.Validate(len(v.control)); err != nil {
		return err
	}
	p := &v.model.params
	volts := PWMToEffort(p, m)
	for i := range v.control {
		v.control[i] = 0
	}
	for i, d := range m.Labels {
		v.control[i] = VoltageToEffort(d, p.DOF[d].PWM, volts[i])
	}
	return v.advance()
}

// ApplyRPM converts normalized RPM commands to thrust and advances one
// sampling period.
func (v *Vehicle) ApplyRPM(m ThrusterMapping) error {
	if err := m.Validate(len(v.control)); err != nil {
		return err
	}
	p := &v.model.params
	for i := range v.control {
		v.control[i] = 0
	}
	for i, d := range m.Labels {
		v.control[i] = RPMToEffort(p.DOF[d].RPM, m.Commands[i])
	}
	return v.advance()
}

func (v *Vehicle) advance() error {
	start := v.t
	for i := 0; i < v.subSteps; i++ {
		v.state = v.integ.Step(v.model, v.state, v.control, start+float64(i)*v.step, v.step)
	}
	v.t = start + float64(v.subSteps)*v.step
	v.cycles++

	if !v.state.IsValid() {
		return &dynamo.SimulationError{Step: v.cycles, Time: v.t, State: v.state.Clone(), Wrapped: dynamo.ErrInvalidState}
	}
	v.refresh()

	for _, o := range v.observers {
		o.OnStep(v.state, v.control, v.t)
	}
	return nil
}

// refresh evaluates the model once at the stored state so the snapshot and
// the stored angles describe the accepted step.
func (v *Vehicle) refresh() {
	_, fixed := v.model.Derive(v.state, v.control, v.t)
	v.state = fixed
}

func (v *Vehicle) SetPosition(p r3.Vec) {
	v.state[IdxPosition], v.state[IdxPosition+1], v.state[IdxPosition+2] = p.X, p.Y, p.Z
	v.refresh()
}

func (v *Vehicle) SetLinearVelocity(vel r3.Vec) {
	v.state[Surge], v.state[Sway], v.state[Heave] = vel.X, vel.Y, vel.Z
	v.refresh()
}

func (v *Vehicle) SetAngularVelocity(w r3.Vec) {
	v.state[Roll], v.state[Pitch], v.state[Yaw] = w.X, w.Y, w.Z
	v.refresh()
}

func (v *Vehicle) SetOrientation(e kinematics.Euler) {
	v.state[IdxEuler], v.state[IdxEuler+1], v.state[IdxEuler+2] = e.Roll, e.Pitch, e.Yaw
	v.refresh()
}

func (v *Vehicle) Position() r3.Vec            { return v.model.snap.Position }
func (v *Vehicle) LinearVelocity() r3.Vec      { return v.model.snap.LinearVelocity }
func (v *Vehicle) AngularVelocity() r3.Vec     { return v.model.snap.AngularVelocity }
func (v *Vehicle) LinearAcceleration() r3.Vec  { return v.model.snap.LinearAcceleration }
func (v *Vehicle) AngularAcceleration() r3.Vec { return v.model.snap.AngularAcceleration }
func (v *Vehicle) Euler() kinematics.Euler     { return v.model.snap.Euler }
func (v *Vehicle) Snapshot() Snapshot          { return v.model.snap }

func (v *Vehicle) Orientation() quat.Number {
	return kinematics.EulerToQuat(v.model.snap.Euler)
}

func (v *Vehicle) Time() float64           { return v.t }
func (v *Vehicle) Cycles() int             { return v.cycles }
func (v *Vehicle) SamplingPeriod() float64 { return v.cfg.SamplingPeriod }
func (v *Vehicle) SubSteps() int           { return v.subSteps }
func (v *Vehicle) Thrusters() int          { return len(v.control) }
func (v *Vehicle) State() dynamo.State     { return v.state.Clone() }
func (v *Vehicle) Control() dynamo.Control { return v.control.Clone() }
func (v *Vehicle) Parameters() Parameters  { return v.model.Parameters() }
func (v *Vehicle) Body() RigidBody         { return v.model.Body() }
