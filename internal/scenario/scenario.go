// Package scenario drives a vehicle through a configured run: it builds the
// vehicle and its controller from a config.Scenario, steps it one sampling
// period at a time and collects the trajectory and metrics.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/control"
	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/integrators"
	"github.com/san-kum/uwvsim/internal/metrics"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

type Option func(*Runner)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMetrics records extra metrics next to the defaults.
func WithMetrics(ms ...dynamo.Metric) Option {
	return func(r *Runner) { r.extra = append(r.extra, ms...) }
}

func WithObserver(o dynamo.Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

// Runner owns one vehicle and its controller. It is not safe for
// concurrent use; Ensemble builds one Runner per member.
type Runner struct {
	cfg       *config.Scenario
	veh       *vehicle.Vehicle
	ctrl      dynamo.Controller
	manual    *control.Manual
	metrics   []dynamo.Metric
	extra     []dynamo.Metric
	observers []dynamo.Observer
	log       zerolog.Logger
}

func New(cfg *config.Scenario, opts ...Option) (*Runner, error) {
	r := &Runner{cfg: cfg.Clone(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	integ, err := integrators.Get(r.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	vopts := []vehicle.Option{vehicle.WithIntegrator(integ), vehicle.WithLogger(r.log)}
	for _, o := range r.observers {
		vopts = append(vopts, vehicle.WithObserver(o))
	}
	veh, err := vehicle.New(r.cfg.VehicleConfig(), r.cfg.Params, vopts...)
	if err != nil {
		return nil, err
	}
	r.veh = veh

	r.ctrl, r.manual, err = BuildController(r.cfg, veh.Thrusters())
	if err != nil {
		return nil, err
	}

	r.metrics = append(metrics.Defaults(veh.Body(), veh.Thrusters()), metrics.NewStability(1e3, 0, 1, 2, 3, 4, 5))
	if loops := r.cfg.Controller.Loops; r.cfg.Controller.Type == "pid" && len(loops) > 0 {
		idx, _ := vehicle.StateIndex(loops[0].State)
		r.metrics = append(r.metrics, metrics.NewTrackingError(idx, loops[0].Target, vehicle.IsAngle(idx)))
	}
	r.metrics = append(r.metrics, r.extra...)
	return r, nil
}

// BuildController maps the controller section of a scenario onto the
// control package. The returned Manual holds the base command vector; it
// is nil for the none controller.
func BuildController(cfg *config.Scenario, thrusters int) (dynamo.Controller, *control.Manual, error) {
	switch cfg.Controller.Type {
	case "", "none":
		return control.None(thrusters), nil, nil
	case "constant":
		m := control.NewManual(cfg.Commands)
		m.Limit = cfg.Controller.Limit
		return m, m, nil
	case "pid":
		m := control.NewManual(cfg.Commands)
		m.Limit = cfg.Controller.Limit
		sum := control.Sum{m}
		for _, l := range cfg.Controller.Loops {
			idx, err := vehicle.StateIndex(l.State)
			if err != nil {
				return nil, nil, err
			}
			pid := control.NewPID(idx, l.Thruster, thrusters, l.Kp, l.Ki, l.Kd, l.Target)
			pid.Limit = cfg.Controller.Limit
			pid.Angular = vehicle.IsAngle(idx)
			sum = append(sum, pid)
		}
		return sum, m, nil
	}
	return nil, nil, fmt.Errorf("unknown controller: %s", cfg.Controller.Type)
}

func (r *Runner) Scenario() *config.Scenario    { return r.cfg }
func (r *Runner) Vehicle() *vehicle.Vehicle     { return r.veh }
func (r *Runner) Controller() dynamo.Controller { return r.ctrl }
func (r *Runner) Manual() *control.Manual       { return r.manual }
func (r *Runner) Metrics() []dynamo.Metric      { return r.metrics }

// Reset returns the vehicle, controller and metrics to their initial state.
func (r *Runner) Reset() {
	r.veh.Reset()
	if rs, ok := r.ctrl.(interface{ Reset() }); ok {
		rs.Reset()
	}
	if r.manual != nil {
		r.manual.Set(r.cfg.Commands)
	}
	for _, m := range r.metrics {
		m.Reset()
	}
}

// Step computes one command vector at the current state and applies it for
// one sampling period. It returns the command that was applied.
func (r *Runner) Step() (dynamo.Control, error) {
	x := r.veh.State()
	t := r.veh.Time()
	u := r.ctrl.Compute(x, t)
	for _, m := range r.metrics {
		m.Observe(x, u, t)
	}

	mapping := r.cfg.Mapping(u)
	var err error
	switch r.cfg.Mode {
	case config.ModePWM:
		err = r.veh.ApplyPWM(mapping)
	default:
		err = r.veh.ApplyRPM(mapping)
	}
	return u, err
}

// Run resets and steps the vehicle for the configured number of cycles.
// On divergence or cancellation the partial result is returned with the
// error.
func (r *Runner) Run(ctx context.Context) (*dynamo.Result, error) {
	r.Reset()
	cycles := r.cfg.Cycles
	result := dynamo.NewResult(cycles)
	result.States = append(result.States, r.veh.State())
	result.Times = append(result.Times, r.veh.Time())

	r.log.Info().
		Str("scenario", r.cfg.Name).
		Str("vehicle", r.cfg.Vehicle).
		Str("integrator", r.cfg.Integrator).
		Int("cycles", cycles).
		Msg("run started")
	start := time.Now()

	var runErr error
	for i := 0; i < cycles; i++ {
		select {
		case <-ctx.Done():
			runErr = fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}
		if runErr != nil {
			break
		}

		u, err := r.Step()
		if err != nil {
			result.Errors = append(result.Errors, dynamo.SimError{Time: r.veh.Time(), Step: i, Message: err.Error()})
			runErr = err
			break
		}

		result.StepsTaken++
		result.States = append(result.States, r.veh.State())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, r.veh.Time())
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	ev := r.log.Info()
	if runErr != nil {
		ev = r.log.Warn().Err(runErr)
	}
	ev.Str("scenario", r.cfg.Name).
		Int("steps", result.StepsTaken).
		Dur("elapsed", time.Since(start)).
		Msg("run finished")
	return result, runErr
}
