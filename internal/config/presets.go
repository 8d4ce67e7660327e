package config

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/vehicle"
)

var Presets = map[string]map[string]*Scenario{
	"unit": {
		"surge":    surgePreset(),
		"buoyancy": buoyancyPreset(),
		"yaw_spin": yawSpinPreset(),
	},
	"rotor": {
		"nutation": nutationPreset(),
	},
	"default": {
		"cruise":       DefaultScenario(),
		"depth_hold":   depthHoldPreset(),
		"heading_hold": headingHoldPreset(),
	},
}

// GetPreset returns a copy of a named preset, or nil.
func GetPreset(vehicleName, name string) *Scenario {
	presets, ok := Presets[vehicleName]
	if !ok {
		return nil
	}
	s, ok := presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

// FindPreset looks a preset up by name across all vehicles.
func FindPreset(name string) *Scenario {
	for _, v := range PresetVehicles() {
		if s := GetPreset(v, name); s != nil {
			return s
		}
	}
	return nil
}

func ListPresets(vehicleName string) []string {
	presets, ok := Presets[vehicleName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func PresetVehicles() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unitScenario(name, desc string) *Scenario {
	s := DefaultScenario()
	s.Name = name
	s.Description = desc
	s.Vehicle = "unit"
	s.Params = vehicle.UnitParameters()
	s.Commands = make([]float64, vehicle.NumDOF)
	s.Controller = ControllerConfig{Type: "none"}
	return s
}

func surgePreset() *Scenario {
	s := unitScenario("surge", "unit surge force 2 settles at unit speed")
	for _, d := range vehicle.AllDOF() {
		s.Params.DOF[d].RPM = vehicle.Pair(2)
	}
	s.Cycles = 50
	s.Commands[vehicle.Surge] = 1
	s.Controller.Type = "constant"
	return s
}

func buoyancyPreset() *Scenario {
	s := unitScenario("buoyancy", "buoyancy 3 against weight 1 settles at unit ascent speed")
	s.Params.Weight = 1
	s.Params.Buoyancy = 3
	s.Cycles = 100
	return s
}

func yawSpinPreset() *Scenario {
	s := unitScenario("yaw_spin", "undamped constant yaw rate for one hour")
	for _, d := range vehicle.AllDOF() {
		s.Params.DOF[d].LinearDamping = vehicle.Pair(0)
		s.Params.DOF[d].QuadraticDamping = vehicle.Pair(0)
	}
	s.Cycles = 36000
	s.Initial.AngularVelocity = r3.Vec{Z: 0.1}
	return s
}

func nutationPreset() *Scenario {
	s := unitScenario("nutation", "torque-free symmetric body, J = (200, 200, 100)")
	s.Vehicle = "rotor"
	s.Params = vehicle.RotorParameters(200, 100)
	s.Cycles = 36000
	s.Initial.AngularVelocity = r3.Vec{X: 0.05, Z: 0.01}
	return s
}

func depthHoldPreset() *Scenario {
	s := DefaultScenario()
	s.Name = "depth_hold"
	s.Description = "dive to 5 m on the two vertical thrusters"
	s.Commands = make([]float64, vehicle.NumDOF)
	s.Cycles = 1200
	loop := LoopConfig{State: "z", Kp: 0.5, Ki: 0.02, Kd: 2.0, Target: 5}
	fore, aft := loop, loop
	fore.Thruster, aft.Thruster = 2, 4
	s.Controller = ControllerConfig{Type: "pid", Limit: 1, Loops: []LoopConfig{fore, aft}}
	return s
}

func headingHoldPreset() *Scenario {
	s := DefaultScenario()
	s.Name = "heading_hold"
	s.Description = "turn to east while cruising, bow and stern lateral thrusters opposed"
	s.Cycles = 900
	bow := LoopConfig{State: "yaw", Thruster: 1, Kp: 1.0, Kd: 2.0, Target: 1.5708}
	stern := bow
	stern.Thruster = 5
	stern.Kp, stern.Kd = -bow.Kp, -bow.Kd
	s.Controller = ControllerConfig{Type: "pid", Limit: 1, Loops: []LoopConfig{bow, stern}}
	return s
}
