package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/uwvsim/internal/config"
)

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&scenarioFile, "config", "", "scenario file (yaml)")
	f.StringVar(&vehicleName, "vehicle", "", "vehicle parameter set (default, unit, rotor)")
	f.IntVar(&cycles, "cycles", config.DefaultCycles, "control cycles to run")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, euler)")
	f.StringVar(&mode, "mode", string(config.ModeRPM), "command mode (rpm, pwm)")
}

// resolveScenario picks the scenario from --config, a preset name argument
// or the default cruise, then applies explicitly set flags.
func resolveScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var s *config.Scenario
	switch {
	case scenarioFile != "":
		loaded, err := config.Load(scenarioFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		s = loaded
	case len(args) > 0:
		if vehicleName != "" {
			s = config.GetPreset(vehicleName, args[0])
		} else {
			s = config.FindPreset(args[0])
		}
		if s == nil {
			return nil, fmt.Errorf("unknown preset: %s", args[0])
		}
	default:
		s = config.DefaultScenario()
		if vehicleName != "" {
			p, err := config.VehicleParameters(vehicleName)
			if err != nil {
				return nil, err
			}
			s.Vehicle, s.Params = vehicleName, p
		}
	}

	flags := cmd.Flags()
	if flags.Changed("cycles") {
		s.Cycles = cycles
	}
	if flags.Changed("integrator") {
		s.Integrator = integrator
	} else if scenarioFile == "" && settings.Integrator != "" {
		s.Integrator = settings.Integrator
	}
	if flags.Changed("mode") {
		s.Mode = config.CommandMode(mode)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
