package vehicle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/kinematics"
)

var unitConfig = Config{SamplingPeriod: 0.1, SubSteps: 10}

func newUnitVehicle(t *testing.T, p Parameters) *Vehicle {
	t.Helper()
	v, err := New(unitConfig, p)
	require.NoError(t, err)
	return v
}

func allDOF(commands ...float64) ThrusterMapping {
	return ThrusterMapping{Labels: AllDOF(), Commands: commands}
}

func TestNewRejectsBadConfig(t *testing.T) {
	fiveRows := UnitParameters()
	fiveRows.ControlMatrix = fiveRows.ControlMatrix[:5]

	tests := []struct {
		name   string
		cfg    Config
		params Parameters
	}{
		{"zero sampling period", Config{SubSteps: 10}, UnitParameters()},
		{"zero sub-steps", Config{SamplingPeriod: 0.1}, UnitParameters()},
		{"wrong state order", Config{SamplingPeriod: 0.1, SubSteps: 1, StateOrder: 13}, UnitParameters()},
		{"wrong control order", Config{SamplingPeriod: 0.1, SubSteps: 1, ControlOrder: 4}, UnitParameters()},
		{"short initial state", Config{SamplingPeriod: 0.1, SubSteps: 1, InitialState: []float64{1, 2}}, UnitParameters()},
		{"control matrix rows", unitConfig, fiveRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.params)
			assert.Error(t, err)
		})
	}
}

func TestSimPerCycleOverridesSubSteps(t *testing.T) {
	p := UnitParameters()
	p.SimPerCycle = 4
	v := newUnitVehicle(t, p)

	assert.Equal(t, 4, v.SubSteps())
	require.NoError(t, v.ApplyRPM(allDOF(0, 0, 0, 0, 0, 0)))
	assert.InDelta(t, 0.1, v.Time(), 1e-15)
}

func TestSteadyStateSurge(t *testing.T) {
	p := UnitParameters()
	for _, d := range AllDOF() {
		p.DOF[d].RPM = Pair(2)
	}
	v := newUnitVehicle(t, p)

	for i := 0; i < 50; i++ {
		require.NoError(t, v.ApplyRPM(allDOF(1, 0, 0, 0, 0, 0)))
	}

	assert.InDelta(t, 1.0, v.LinearVelocity().X, 1e-3)
	assert.InDelta(t, 0, v.LinearVelocity().Y, 1e-12)
	assert.InDelta(t, 0, v.LinearAcceleration().X, 1e-3)
	assert.InDelta(t, 5.0, v.Time(), 1e-12)
	assert.Equal(t, 50, v.Cycles())
}

func TestBuoyancyDrivesAscent(t *testing.T) {
	p := UnitParameters()
	p.Weight = 1
	p.Buoyancy = 3
	v := newUnitVehicle(t, p)

	for i := 0; i < 100; i++ {
		require.NoError(t, v.ApplyRPM(allDOF(0, 0, 0, 0, 0, 0)))
	}

	// z points down: the positively buoyant vehicle rises at unit speed
	assert.InDelta(t, -1.0, v.LinearVelocity().Z, 1e-3)
	assert.Less(t, v.Position().Z, -5.0)
}

func TestConstantYawRate(t *testing.T) {
	if testing.Short() {
		t.Skip("one simulated hour")
	}
	p := UnitParameters()
	for _, d := range AllDOF() {
		p.DOF[d].LinearDamping = Pair(0)
		p.DOF[d].QuadraticDamping = Pair(0)
	}
	v := newUnitVehicle(t, p)
	v.SetAngularVelocity(r3.Vec{Z: 0.1})

	for i := 1; i <= 36000; i++ {
		require.NoError(t, v.ApplyRPM(allDOF(0, 0, 0, 0, 0, 0)))
		if i%600 == 0 {
			e := v.Euler()
			want := kinematics.NormalizeAngle(0.1 * v.Time())
			assert.InDelta(t, 0, kinematics.NormalizeAngle(e.Yaw-want), 1e-8, "t=%.1f", v.Time())
			assert.Equal(t, 0.0, e.Roll)
			assert.Equal(t, 0.0, e.Pitch)
			assert.LessOrEqual(t, math.Abs(e.Yaw), math.Pi)
		}
	}
	assert.InDelta(t, 3600, v.Time(), 1e-6)
}

func TestApplyPWMUsesCalibration(t *testing.T) {
	p := UnitParameters()
	p.ThrusterVoltage = 1
	p.DOF[Surge].PWM.Positive = Curve{A: 1, B: 0}
	v := newUnitVehicle(t, p)

	require.NoError(t, v.ApplyPWM(allDOF(0.5, 0.005, 5e-4, 0, 0, -0.2)))

	u := v.Control()
	assert.InDelta(t, 0.25, u[0], 1e-12, "0.5 V through a·|v|·v")
	assert.Equal(t, 0.0, u[1], "sway dead zone")
	assert.Equal(t, 0.0, u[2], "heave gap between bands")
	assert.Equal(t, 0.0, u[3])
	assert.InDelta(t, -0.2, u[5], 1e-12)
	assert.Greater(t, v.LinearVelocity().X, 0.0)
}

func TestApplyRejectsBadMapping(t *testing.T) {
	v := newUnitVehicle(t, UnitParameters())

	err := v.ApplyRPM(ThrusterMapping{Labels: []DOF{Surge, Surge, Heave, Roll, Pitch, Yaw}, Commands: make([]float64, 6)})
	assert.ErrorIs(t, err, ErrInvalidMapping)
	err = v.ApplyPWM(allDOF(1, 2, 3))
	assert.ErrorIs(t, err, ErrInvalidMapping)

	assert.Equal(t, 0.0, v.Time(), "rejected commands must not advance time")
}

func TestSetParameters(t *testing.T) {
	v := newUnitVehicle(t, UnitParameters())

	p := UnitParameters()
	p.ControlMatrix = [][]float64{{1}, {0}, {0}, {0}, {0}, {0}}
	assert.ErrorIs(t, v.SetParameters(p), dynamo.ErrDimensionMismatch)

	heavy := UnitParameters()
	heavy.DOF[Surge].Mass = Pair(1000)
	require.NoError(t, v.SetParameters(heavy))
	require.NoError(t, v.ApplyRPM(allDOF(1, 0, 0, 0, 0, 0)))
	assert.InDelta(t, 1e-4, v.LinearVelocity().X, 1e-6)
	assert.Equal(t, 1000.0, v.Parameters().DOF[Surge].Mass.Positive)
}

func TestSetSamplingPeriod(t *testing.T) {
	v := newUnitVehicle(t, UnitParameters())

	require.Error(t, v.SetSamplingPeriod(0))
	require.NoError(t, v.SetSamplingPeriod(0.2))
	require.NoError(t, v.ApplyRPM(allDOF(0, 0, 0, 0, 0, 0)))
	assert.InDelta(t, 0.2, v.Time(), 1e-15)
	assert.Equal(t, 0.2, v.SamplingPeriod())
}

func TestSeedingSetters(t *testing.T) {
	v := newUnitVehicle(t, UnitParameters())

	v.SetPosition(r3.Vec{X: 1, Y: 2, Z: 3})
	v.SetLinearVelocity(r3.Vec{X: 0.5})
	v.SetOrientation(kinematics.Euler{Yaw: 4})

	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, v.Position())
	assert.Equal(t, r3.Vec{X: 0.5}, v.LinearVelocity())
	assert.InDelta(t, 4-2*math.Pi, v.Euler().Yaw, 1e-12)
	assert.InDelta(t, 4-2*math.Pi, v.State()[IdxEuler+2], 1e-12)
	assert.InDelta(t, -0.5-0.25, v.LinearAcceleration().X, 1e-12)

	q := v.Orientation()
	assert.InDelta(t, math.Abs(math.Cos(2)), math.Abs(q.Real), 1e-12)

	v.Reset()
	assert.Equal(t, r3.Vec{}, v.Position())
	assert.Equal(t, 0.0, v.Time())
}

func TestInitialStateAndTime(t *testing.T) {
	init := make([]float64, StateDim)
	init[IdxPosition+2] = 10
	init[Surge] = 0.3
	v, err := New(Config{SamplingPeriod: 0.1, SubSteps: 10, InitialTime: 7, InitialState: init}, UnitParameters())
	require.NoError(t, err)

	assert.Equal(t, 7.0, v.Time())
	assert.Equal(t, 10.0, v.Position().Z)
	assert.Equal(t, 0.3, v.LinearVelocity().X)
}

type countingObserver struct {
	calls int
	lastT float64
}

func (c *countingObserver) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	c.calls++
	c.lastT = t
}

func TestObserverCalledPerCycle(t *testing.T) {
	obs := &countingObserver{}
	v, err := New(unitConfig, UnitParameters(), WithObserver(obs))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, v.ApplyRPM(allDOF(0, 0, 0, 0, 0, 0)))
	}
	assert.Equal(t, 3, obs.calls)
	assert.InDelta(t, 0.3, obs.lastT, 1e-12)
}

func TestDivergenceIsReported(t *testing.T) {
	p := UnitParameters()
	for _, d := range AllDOF() {
		p.DOF[d].Mass = Pair(1e-300)
		p.DOF[d].RPM = Pair(1e300)
	}
	v := newUnitVehicle(t, p)

	err := v.ApplyRPM(allDOF(1e10, 0, 0, 0, 0, 0))
	var simErr *dynamo.SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
	assert.Equal(t, 1, simErr.Step)
}
