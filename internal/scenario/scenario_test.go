package scenario

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/control"
	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

func preset(t *testing.T, v, name string) *config.Scenario {
	t.Helper()
	s := config.GetPreset(v, name)
	require.NotNil(t, s, "%s/%s", v, name)
	return s
}

func TestRunSurge(t *testing.T) {
	r, err := New(preset(t, "unit", "surge"))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, res.StepsTaken)
	assert.Len(t, res.States, 51)
	assert.Len(t, res.Controls, 50)
	assert.InDelta(t, 5.0, res.Times[len(res.Times)-1], 1e-9)
	assert.InDelta(t, 1.0, res.Final()[vehicle.Surge], 1e-3)

	for _, name := range []string{"kinetic_energy", "energy_drift", "control_effort", "stability"} {
		assert.Contains(t, res.Metrics, name)
	}
	assert.Equal(t, 1.0, res.Metrics["stability"])
}

func TestRunIsRepeatable(t *testing.T) {
	r, err := New(preset(t, "unit", "buoyancy"))
	require.NoError(t, err)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Final(), second.Final())
	assert.InDelta(t, -1.0, second.Final()[vehicle.Heave], 1e-3)
}

func TestDepthHold(t *testing.T) {
	r, err := New(preset(t, "default", "depth_hold"))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	z := res.Final()[vehicle.IdxPosition+2]
	assert.InDelta(t, 5.0, z, 0.1)
	assert.Contains(t, res.Metrics, "tracking_error")
	assert.Greater(t, res.Metrics["tracking_error"], 0.0)

	// the two vertical thrusters share a loop gain and never pitch the hull
	assert.InDelta(t, 0.0, res.Final()[vehicle.IdxEuler+1], 1e-9)
}

func TestHeadingHold(t *testing.T) {
	r, err := New(preset(t, "default", "heading_hold"))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, res.Final()[vehicle.IdxEuler+2], 0.01)
	assert.Greater(t, res.Final()[vehicle.Surge], 0.0)
}

func TestRunPWM(t *testing.T) {
	s := config.DefaultScenario()
	s.Mode = config.ModePWM
	s.Commands = []float64{0.5, 0, 0, 0, 0, 0}
	s.Cycles = 100

	r, err := New(s)
	require.NoError(t, err)
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Greater(t, res.Final()[vehicle.Surge], 0.0)
}

func TestRunCanceled(t *testing.T) {
	r, err := New(preset(t, "unit", "surge"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrContextCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.StepsTaken)
	assert.Len(t, res.States, 1)
}

func TestStepUsesManualCommands(t *testing.T) {
	s := preset(t, "unit", "surge")
	r, err := New(s)
	require.NoError(t, err)
	require.NotNil(t, r.Manual())

	r.Manual().Nudge(int(vehicle.Surge), -1)
	u, err := r.Step()
	require.NoError(t, err)
	assert.Equal(t, 0.0, u[vehicle.Surge])
	assert.Equal(t, 1, r.Vehicle().Cycles())

	r.Reset()
	assert.Equal(t, 1.0, r.Manual().U[vehicle.Surge])
	assert.Equal(t, 0, r.Vehicle().Cycles())
}

func TestBuildController(t *testing.T) {
	s := preset(t, "default", "depth_hold")

	c, m, err := BuildController(s, 6)
	require.NoError(t, err)
	require.NotNil(t, m)
	sum, ok := c.(control.Sum)
	require.True(t, ok)
	assert.Len(t, sum, 3)

	s.Controller.Type = "none"
	c, m, err = BuildController(s, 6)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, make(dynamo.Control, 6), c.Compute(make(dynamo.State, 12), 0))

	s.Controller.Type = "lqr"
	_, _, err = BuildController(s, 6)
	assert.Error(t, err)
}

func TestNewRejectsInvalid(t *testing.T) {
	s := config.DefaultScenario()
	s.Integrator = "leapfrog"
	_, err := New(s)
	assert.Error(t, err)
}

type countObserver struct{ n int }

func (o *countObserver) OnStep(x dynamo.State, u dynamo.Control, t float64) { o.n++ }

func TestObserver(t *testing.T) {
	obs := &countObserver{}
	r, err := New(preset(t, "unit", "surge"), WithObserver(obs))
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, obs.n)
}

func TestEnsemble(t *testing.T) {
	scenarios := []*config.Scenario{
		preset(t, "unit", "surge"),
		preset(t, "unit", "buoyancy"),
	}

	results, err := Ensemble{Workers: 2}.Run(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].Final()[vehicle.Surge], 1e-3)
	assert.InDelta(t, -1.0, results[1].Final()[vehicle.Heave], 1e-3)
}

func TestEnsembleError(t *testing.T) {
	bad := config.DefaultScenario()
	bad.Cycles = 0

	_, err := Ensemble{}.Run(context.Background(), []*config.Scenario{preset(t, "unit", "surge"), bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dynamo.ErrParameterBounds))
}
