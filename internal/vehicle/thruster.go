package vehicle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// ThrusterMapping pairs each thruster, in control-matrix column order, with
// the DOF whose calibration it uses and its raw command.
type ThrusterMapping struct {
	Labels   []DOF     `yaml:"labels" json:"labels"`
	Commands []float64 `yaml:"commands" json:"commands"`
}

// NewMapping parses DOF labels by name.
func NewMapping(labels []string, commands []float64) (ThrusterMapping, error) {
	m := ThrusterMapping{Labels: make([]DOF, len(labels)), Commands: commands}
	for i, l := range labels {
		d, err := ParseDOF(l)
		if err != nil {
			return ThrusterMapping{}, err
		}
		m.Labels[i] = d
	}
	return m, nil
}

// Validate requires one entry per thruster and at most one thruster per DOF.
func (m ThrusterMapping) Validate(thrusters int) error {
	if len(m.Labels) != len(m.Commands) {
		return fmt.Errorf("%w: %d labels for %d commands", ErrInvalidMapping, len(m.Labels), len(m.Commands))
	}
	if len(m.Labels) != thrusters {
		return fmt.Errorf("%w: %d entries for %d thrusters", ErrInvalidMapping, len(m.Labels), thrusters)
	}
	var seen [NumDOF]bool
	for _, d := range m.Labels {
		if !d.Valid() {
			return fmt.Errorf("%w: DOF %d out of range", ErrInvalidMapping, int(d))
		}
		if seen[d] {
			return fmt.Errorf("%w: duplicate label %s", ErrInvalidMapping, d)
		}
		seen[d] = true
	}
	return nil
}

// deadBand classifies a command: |x| <= zero is off (zero == 0 means only an
// exact zero), x < neg takes the negative branch, x > pos the positive
// branch, and anything left in between is off.
type deadBand struct {
	zero, neg, pos float64
}

func (b deadBand) sign(x float64) int {
	switch {
	case math.Abs(x) <= b.zero:
		return 0
	case x < b.neg:
		return -1
	case x > b.pos:
		return 1
	}
	return 0
}

// Dead bands on the PWM percentage command. The pitch row has its negative
// bound above zero, so tiny positive commands take the negative branch.
var commandBands = [NumDOF]deadBand{
	Surge: {zero: 0.01, neg: -0.01, pos: 0.01},
	Sway:  {zero: 0.01, neg: -0.01, pos: 0.01},
	Heave: {zero: 1e-4, neg: -1e-3, pos: 1e-3},
	Roll:  {zero: 0, neg: -1e-3, pos: 1e-3},
	Pitch: {zero: 0, neg: 1e-6, pos: 1e-6},
	Yaw:   {zero: 0.01, neg: -0.01, pos: 0.01},
}

// Dead bands on the voltage fed to the thrust curve.
var voltageBands = [NumDOF]deadBand{
	Surge: {zero: 0.01, neg: -0.01, pos: 0.01},
	Sway:  {zero: 0.01, neg: -0.01, pos: 0.01},
	Heave: {},
	Roll:  {},
	Pitch: {},
	Yaw:   {zero: 0.01, neg: -0.01, pos: 0.01},
}

// PWMToVoltage converts one PWM percentage command to a voltage equivalent
// through the DOF's [Min, Max] PWM range.
func PWMToVoltage(d DOF, cal PWMCalibration, voltage, cmd float64) float64 {
	span := cal.Max - cal.Min
	switch commandBands[d].sign(cmd) {
	case -1:
		return (span*cmd - cal.Min) / 255 * voltage
	case 1:
		return (span*cmd + cal.Min) / 255 * voltage
	}
	return 0
}

// VoltageToEffort applies the DOF's sign-selected thrust curve.
func VoltageToEffort(d DOF, cal PWMCalibration, v float64) float64 {
	switch voltageBands[d].sign(v) {
	case -1:
		return cal.Negative.Eval(v)
	case 1:
		return cal.Positive.Eval(v)
	}
	return 0
}

// PWMToEffort returns the per-thruster voltage equivalents of a mapping.
func PWMToEffort(p *Parameters, m ThrusterMapping) []float64 {
	out := make([]float64, len(m.Commands))
	for i, d := range m.Labels {
		out[i] = PWMToVoltage(d, p.DOF[d].PWM, p.ThrusterVoltage, m.Commands[i])
	}
	return out
}

// RPMToEffort is c·|raw|·raw with the coefficient selected by the sign of
// the command. There is no dead zone and no clamping.
func RPMToEffort(coef CoefficientPair, raw float64) float64 {
	return coef.Select(raw >= 0) * math.Abs(raw) * raw
}

// ThrusterWrench maps per-thruster thrust through the control matrix.
func ThrusterWrench(controlMatrix mat.Matrix, thrust []float64) Wrench {
	_, c := controlMatrix.Dims()
	if c != len(thrust) {
		panic(fmt.Errorf("%w: control matrix has %d columns, got %d thrusts", dynamo.ErrDimensionMismatch, c, len(thrust)))
	}
	var tau mat.VecDense
	tau.MulVec(controlMatrix, mat.NewVecDense(len(thrust), thrust))
	return wrenchFromVec(&tau)
}
