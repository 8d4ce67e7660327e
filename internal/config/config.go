package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/integrators"
	"github.com/san-kum/uwvsim/internal/kinematics"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

const (
	DefaultSamplingPeriod = 0.1
	DefaultSubSteps       = 10
	DefaultCycles         = 600
	DefaultIntegrator     = "rk4"
	DefaultVehicle        = "default"
)

// CommandMode selects the apply path commands are sent through.
type CommandMode string

const (
	ModeRPM CommandMode = "rpm"
	ModePWM CommandMode = "pwm"
)

// Scenario is one reproducible run: a vehicle, its initial condition and a
// command source.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Vehicle names the base parameter set that params and params_file
	// are applied on top of.
	Vehicle    string             `yaml:"vehicle"`
	ParamsFile string             `yaml:"params_file,omitempty"`
	Params     vehicle.Parameters `yaml:"params"`

	Integrator     string      `yaml:"integrator"`
	SamplingPeriod float64     `yaml:"sampling_period"`
	SubSteps       int         `yaml:"sub_steps"`
	Cycles         int         `yaml:"cycles"`
	Mode           CommandMode `yaml:"mode"`

	Labels   []vehicle.DOF `yaml:"labels"`
	Commands []float64     `yaml:"commands"`

	Initial    InitialState     `yaml:"initial"`
	Controller ControllerConfig `yaml:"controller"`
}

type InitialState struct {
	Position        r3.Vec           `yaml:"position"`
	Orientation     kinematics.Euler `yaml:"orientation"`
	LinearVelocity  r3.Vec           `yaml:"linear_velocity"`
	AngularVelocity r3.Vec           `yaml:"angular_velocity"`
}

// Vector lays the initial condition out in state order.
func (s InitialState) Vector() []float64 {
	return []float64{
		s.LinearVelocity.X, s.LinearVelocity.Y, s.LinearVelocity.Z,
		s.AngularVelocity.X, s.AngularVelocity.Y, s.AngularVelocity.Z,
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Orientation.Roll, s.Orientation.Pitch, s.Orientation.Yaw,
	}
}

type ControllerConfig struct {
	// Type is none, constant or pid. Constant sends Commands every cycle;
	// pid adds its loops on top of Commands.
	Type  string       `yaml:"type"`
	Limit float64      `yaml:"limit,omitempty"`
	Loops []LoopConfig `yaml:"loops,omitempty"`
}

// LoopConfig is one PID loop from a named state entry to a thruster slot.
type LoopConfig struct {
	State    string  `yaml:"state"`
	Thruster int     `yaml:"thruster"`
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Kd       float64 `yaml:"kd"`
	Target   float64 `yaml:"target"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:           "cruise",
		Vehicle:        DefaultVehicle,
		Params:         vehicle.DefaultParameters(),
		Integrator:     DefaultIntegrator,
		SamplingPeriod: DefaultSamplingPeriod,
		SubSteps:       DefaultSubSteps,
		Cycles:         DefaultCycles,
		Mode:           ModeRPM,
		Labels:         vehicle.AllDOF(),
		Commands:       []float64{0.5, 0, 0, 0, 0, 0},
		Controller:     ControllerConfig{Type: "constant"},
	}
}

// VehicleParameters returns a named base parameter set.
func VehicleParameters(name string) (vehicle.Parameters, error) {
	switch name {
	case "", "default":
		return vehicle.DefaultParameters(), nil
	case "unit":
		return vehicle.UnitParameters(), nil
	case "rotor":
		return vehicle.RotorParameters(200, 100), nil
	}
	return vehicle.Parameters{}, fmt.Errorf("unknown vehicle: %s", name)
}

func VehicleNames() []string {
	return []string{"default", "rotor", "unit"}
}

// Load reads a scenario file. The vehicle key is read first so the rest of
// the document overlays the right base parameters; a params_file, resolved
// relative to the scenario, is applied last.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Vehicle string `yaml:"vehicle"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	base, err := VehicleParameters(head.Vehicle)
	if err != nil {
		return nil, err
	}

	cfg := DefaultScenario()
	cfg.Vehicle = head.Vehicle
	cfg.Params = base
	cfg.Commands = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.ParamsFile != "" {
		pf := cfg.ParamsFile
		if !filepath.IsAbs(pf) {
			pf = filepath.Join(filepath.Dir(path), pf)
		}
		p, err := vehicle.LoadParameters(pf, cfg.Params)
		if err != nil {
			return nil, err
		}
		cfg.Params = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Scenario) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fills empty commands with zeros and checks the scenario against
// its own parameters.
func (s *Scenario) Validate() error {
	if err := s.Params.Validate(); err != nil {
		return err
	}
	if s.SamplingPeriod <= 0 {
		return fmt.Errorf("%w: sampling_period must be positive, got %g", dynamo.ErrParameterBounds, s.SamplingPeriod)
	}
	if s.SubSteps < 1 && s.Params.SimPerCycle < 1 {
		return fmt.Errorf("%w: sub_steps must be at least 1", dynamo.ErrParameterBounds)
	}
	if s.Cycles < 1 {
		return fmt.Errorf("%w: cycles must be at least 1", dynamo.ErrParameterBounds)
	}
	switch s.Mode {
	case ModeRPM, ModePWM:
	default:
		return fmt.Errorf("%w: unknown mode %q", dynamo.ErrParameterBounds, s.Mode)
	}
	if _, err := integrators.Get(s.Integrator); err != nil {
		return err
	}

	n := s.Params.Thrusters()
	if len(s.Commands) == 0 {
		s.Commands = make([]float64, len(s.Labels))
	}
	m := vehicle.ThrusterMapping{Labels: s.Labels, Commands: s.Commands}
	if err := m.Validate(n); err != nil {
		return err
	}

	switch s.Controller.Type {
	case "", "none", "constant":
	case "pid":
		if len(s.Controller.Loops) == 0 {
			return fmt.Errorf("%w: pid controller needs at least one loop", dynamo.ErrParameterBounds)
		}
		for _, l := range s.Controller.Loops {
			if _, err := vehicle.StateIndex(l.State); err != nil {
				return err
			}
			if l.Thruster < 0 || l.Thruster >= n {
				return fmt.Errorf("%w: loop on %s drives thruster %d of %d", dynamo.ErrDimensionMismatch, l.State, l.Thruster, n)
			}
		}
	default:
		return fmt.Errorf("unknown controller: %s", s.Controller.Type)
	}
	return nil
}

// VehicleConfig derives the vehicle timing from the scenario.
func (s *Scenario) VehicleConfig() vehicle.Config {
	return vehicle.Config{
		SamplingPeriod: s.SamplingPeriod,
		SubSteps:       s.SubSteps,
		InitialState:   s.Initial.Vector(),
	}
}

// Mapping pairs the scenario labels with a command vector.
func (s *Scenario) Mapping(commands []float64) vehicle.ThrusterMapping {
	return vehicle.ThrusterMapping{Labels: s.Labels, Commands: commands}
}

// Duration is the simulated time the scenario covers.
func (s *Scenario) Duration() float64 {
	return float64(s.Cycles) * s.SamplingPeriod
}

// Clone returns a deep copy so presets can be modified freely.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Params = s.Params.Clone()
	c.Labels = append([]vehicle.DOF(nil), s.Labels...)
	c.Commands = append([]float64(nil), s.Commands...)
	c.Controller.Loops = append([]LoopConfig(nil), s.Controller.Loops...)
	return &c
}
