package vehicle

import "gonum.org/v1/gonum/spatial/r3"

// DefaultParameters describes a mid-size survey AUV with six thrusters, one
// labeled per DOF. It is slightly positively buoyant with the center of
// buoyancy above the center of gravity.
func DefaultParameters() Parameters {
	p := Parameters{
		Model: SimpleModel,
		Frame: BodyFixed,
		ControlMatrix: [][]float64{
			{1, 0, 0, 0, 0, 0},
			{0, 1, 0, 0, 0, 1},
			{0, 0, 1, 0, 1, 0},
			{0, 0, 0, 0.3, 0, 0},
			{0, 0, -0.5, 0, 0.5, 0},
			{0, 0.6, 0, 0, 0, -0.6},
		},
		ThrusterVoltage:  33,
		Mass:             80,
		Volume:           0.0785,
		Gravity:          9.81,
		WaterDensity:     1025,
		CenterOfGravity:  r3.Vec{Z: 0.02},
		CenterOfBuoyancy: r3.Vec{Z: -0.01},
		ZeroThreshold:    DefaultZeroThreshold,
	}

	mass := [NumDOF]float64{80, 110, 120, 8, 20, 18}
	lin := [NumDOF]float64{5, 8, 10, 2, 3, 3}
	quad := [NumDOF]float64{30, 60, 70, 5, 10, 10}
	for _, d := range AllDOF() {
		p.DOF[d] = DOFParameters{
			Mass:             Pair(mass[d]),
			LinearDamping:    Pair(lin[d]),
			QuadraticDamping: Pair(quad[d]),
			PWM: PWMCalibration{
				Positive: Curve{A: 0.4, B: 2.0},
				Negative: Curve{A: 0.3, B: 1.6},
				Min:      20,
				Max:      255,
			},
			RPM: CoefficientPair{Positive: 60, Negative: 45},
		}
	}
	return p
}

// UnitParameters is a neutrally weighted vehicle with unit inertia, unit
// linear and quadratic damping and one thruster per DOF pushing straight
// along it. Outside the dead bands a PWM command c yields effort 255·c
// (full range [0, 255] at 255 V with a unit linear curve) and an RPM
// command c yields |c|·c.
func UnitParameters() Parameters {
	p := Parameters{
		Model:           SimpleModel,
		Frame:           BodyFixed,
		ControlMatrix:   identity(NumDOF),
		ThrusterVoltage: 255,
		ZeroThreshold:   DefaultZeroThreshold,
	}
	for _, d := range AllDOF() {
		p.DOF[d] = DOFParameters{
			Mass:             Pair(1),
			LinearDamping:    Pair(1),
			QuadraticDamping: Pair(1),
			PWM: PWMCalibration{
				Positive: Curve{B: 1},
				Negative: Curve{B: 1},
				Max:      255,
			},
			RPM: Pair(1),
		}
	}
	return p
}

// RotorParameters is an undamped, neutrally buoyant body with diagonal
// rotational inertia (jt, jt, j3), set up for torque-free rotation studies.
func RotorParameters(jt, j3 float64) Parameters {
	p := UnitParameters()
	p.Model = ComplexModel
	p.Frame = EarthFixed
	inertia := [NumDOF]float64{1, 1, 1, jt, jt, j3}
	for _, d := range AllDOF() {
		p.DOF[d].Mass = Pair(inertia[d])
		p.DOF[d].LinearDamping = Pair(0)
		p.DOF[d].QuadraticDamping = Pair(0)
	}
	return p
}

func identity(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}
