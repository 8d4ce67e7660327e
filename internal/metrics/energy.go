package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// InertiaSource supplies the velocity-dependent inertia matrix of the
// vehicle being observed.
type InertiaSource interface {
	InertiaMatrix(nu []float64) *mat.DiagDense
}

func kinetic(src InertiaSource, x dynamo.State) float64 {
	nu := mat.NewVecDense(6, x[:6:6])
	return 0.5 * mat.Inner(nu, src.InertiaMatrix(x[:6]), nu)
}

// KineticEnergy is the mean of ½νᵀMν over the observed samples.
type KineticEnergy struct {
	name    string
	src     InertiaSource
	samples int
	total   float64
}

func NewKineticEnergy(src InertiaSource) *KineticEnergy {
	return &KineticEnergy{
		name: "kinetic_energy",
		src:  src,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 6 {
		return
	}
	e.total += kinetic(e.src, x)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of kinetic energy from the
// first sample. It stays near zero for free, undamped motion.
type EnergyDrift struct {
	name          string
	src           InertiaSource
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(src InertiaSource) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		src:  src,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 6 {
		return
	}
	energy := kinetic(e.src, x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
