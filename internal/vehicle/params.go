package vehicle

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

const (
	// DefaultZeroThreshold selects the positive mass coefficient for
	// velocities strictly above it.
	DefaultZeroThreshold = 1e-6

	// DampingSelectThreshold selects the positive damping coefficients for
	// velocities strictly above it.
	DampingSelectThreshold = -1e-3
)

type ModelType string

const (
	SimpleModel  ModelType = "simple"
	ComplexModel ModelType = "complex"
)

// CoefficientPair holds a coefficient used for positive and for negative
// motion or command.
type CoefficientPair struct {
	Positive float64 `yaml:"positive" json:"positive"`
	Negative float64 `yaml:"negative" json:"negative"`
}

// Pair returns a symmetric coefficient pair.
func Pair(v float64) CoefficientPair {
	return CoefficientPair{Positive: v, Negative: v}
}

func (c CoefficientPair) Select(positive bool) float64 {
	if positive {
		return c.Positive
	}
	return c.Negative
}

// Curve is the quadratic-plus-linear thrust curve a·|v|·v + b·v.
type Curve struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

func (c Curve) Eval(v float64) float64 {
	return c.A*math.Abs(v)*v + c.B*v
}

// PWMCalibration maps a PWM percentage command to thrust for one DOF.
type PWMCalibration struct {
	Positive Curve   `yaml:"positive" json:"positive"`
	Negative Curve   `yaml:"negative" json:"negative"`
	Min      float64 `yaml:"min" json:"min"`
	Max      float64 `yaml:"max" json:"max"`
}

// DOFParameters is one row of the per-DOF coefficient table.
type DOFParameters struct {
	Mass             CoefficientPair `yaml:"mass" json:"mass"`
	LinearDamping    CoefficientPair `yaml:"linear_damping" json:"linear_damping"`
	QuadraticDamping CoefficientPair `yaml:"quadratic_damping" json:"quadratic_damping"`
	PWM              PWMCalibration  `yaml:"pwm" json:"pwm"`
	RPM              CoefficientPair `yaml:"rpm" json:"rpm"`
}

// DOFTable is indexed by DOF. In YAML it is a mapping keyed by DOF name;
// entries that are left out keep their previous values.
type DOFTable [NumDOF]DOFParameters

func (t *DOFTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("dof table: expected mapping at line %d", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		d, err := ParseDOF(node.Content[i].Value)
		if err != nil {
			return fmt.Errorf("dof table line %d: %w", node.Content[i].Line, err)
		}
		entry := t[d]
		if err := node.Content[i+1].Decode(&entry); err != nil {
			return err
		}
		t[d] = entry
	}
	return nil
}

func (t DOFTable) MarshalYAML() (interface{}, error) {
	out := make(map[string]DOFParameters, NumDOF)
	for _, d := range AllDOF() {
		out[d.String()] = t[d]
	}
	return out, nil
}

// Parameters is the complete physical and actuation description of a
// vehicle. A value is installed wholesale; fields are never patched
// individually while a run is in progress.
type Parameters struct {
	Model ModelType `yaml:"model_type" json:"model_type"`
	Frame FrameKind `yaml:"frame" json:"frame"`

	DOF DOFTable `yaml:"dof" json:"dof"`

	// ControlMatrix has one row per DOF and one column per thruster.
	ControlMatrix   [][]float64 `yaml:"control_matrix" json:"control_matrix"`
	ThrusterVoltage float64     `yaml:"thruster_voltage" json:"thruster_voltage"`

	Mass         float64 `yaml:"mass" json:"mass"`
	Volume       float64 `yaml:"volume" json:"volume"`
	Gravity      float64 `yaml:"gravity" json:"gravity"`
	WaterDensity float64 `yaml:"water_density" json:"water_density"`

	// Weight and Buoyancy override the values derived from mass and volume
	// when non-zero.
	Weight   float64 `yaml:"weight" json:"weight"`
	Buoyancy float64 `yaml:"buoyancy" json:"buoyancy"`
	Float    bool    `yaml:"float" json:"float"`

	CenterOfGravity  r3.Vec `yaml:"center_of_gravity" json:"center_of_gravity"`
	CenterOfBuoyancy r3.Vec `yaml:"center_of_buoyancy" json:"center_of_buoyancy"`

	// SimPerCycle overrides the sub-step count of the vehicle when > 0.
	SimPerCycle   int     `yaml:"sim_per_cycle" json:"sim_per_cycle"`
	ZeroThreshold float64 `yaml:"zero_threshold" json:"zero_threshold"`
}

// Thrusters is the column count of the control matrix.
func (p *Parameters) Thrusters() int {
	if len(p.ControlMatrix) == 0 {
		return 0
	}
	return len(p.ControlMatrix[0])
}

func (p *Parameters) EffectiveWeight() float64 {
	if p.Weight != 0 {
		return p.Weight
	}
	return p.Mass * p.Gravity
}

// EffectiveBuoyancy equals the weight for floating vehicles.
func (p *Parameters) EffectiveBuoyancy() float64 {
	if p.Float {
		return p.EffectiveWeight()
	}
	if p.Buoyancy != 0 {
		return p.Buoyancy
	}
	return p.WaterDensity * p.Volume * p.Gravity
}

func (p *Parameters) massThreshold() float64 {
	if p.ZeroThreshold > 0 {
		return p.ZeroThreshold
	}
	return DefaultZeroThreshold
}

// ControlMatrixDense copies the control matrix into a 6×N dense matrix.
func (p *Parameters) ControlMatrixDense() *mat.Dense {
	n := p.Thrusters()
	m := mat.NewDense(NumDOF, n, nil)
	for i, row := range p.ControlMatrix {
		m.SetRow(i, row)
	}
	return m
}

// Validate checks the shape and sign constraints that do not depend on the
// vehicle's current state.
func (p *Parameters) Validate() error {
	if len(p.ControlMatrix) != NumDOF {
		return fmt.Errorf("%w: control matrix has %d rows, want %d", dynamo.ErrDimensionMismatch, len(p.ControlMatrix), NumDOF)
	}
	n := p.Thrusters()
	if n == 0 || n > NumDOF {
		return fmt.Errorf("%w: %d thrusters, want 1..%d", dynamo.ErrDimensionMismatch, n, NumDOF)
	}
	for i, row := range p.ControlMatrix {
		if len(row) != n {
			return fmt.Errorf("%w: control matrix row %s has %d columns, want %d", dynamo.ErrDimensionMismatch, DOF(i), len(row), n)
		}
	}
	for _, d := range AllDOF() {
		m := p.DOF[d].Mass
		if m.Positive <= 0 || m.Negative <= 0 {
			return fmt.Errorf("%w: %s mass %+v", ErrNonPositiveInertia, d, m)
		}
	}
	switch p.Model {
	case "", SimpleModel, ComplexModel:
	default:
		return fmt.Errorf("%w: unknown model type %q", dynamo.ErrParameterBounds, p.Model)
	}
	switch p.Frame {
	case "", BodyFixed, EarthFixed:
	default:
		return fmt.Errorf("%w: unknown frame %q", dynamo.ErrParameterBounds, p.Frame)
	}
	if p.SimPerCycle < 0 {
		return fmt.Errorf("%w: sim_per_cycle %d", dynamo.ErrParameterBounds, p.SimPerCycle)
	}
	if p.ZeroThreshold < 0 {
		return fmt.Errorf("%w: zero_threshold %g", dynamo.ErrParameterBounds, p.ZeroThreshold)
	}
	return nil
}

// Clone returns a deep copy.
func (p Parameters) Clone() Parameters {
	c := p
	c.ControlMatrix = make([][]float64, len(p.ControlMatrix))
	for i, row := range p.ControlMatrix {
		c.ControlMatrix[i] = append([]float64(nil), row...)
	}
	return c
}

// LoadParameters reads a YAML parameter file on top of base.
func LoadParameters(path string, base Parameters) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, err
	}
	p := base.Clone()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Parameters{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func SaveParameters(path string, p Parameters) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
