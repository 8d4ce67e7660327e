package integrators

import (
	"testing"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// benchPlant mimics the vehicle layout: six decoupled damped velocities
// feeding six pose rates.
type benchPlant struct{}

func (b *benchPlant) StateDim() int   { return 12 }
func (b *benchPlant) ControlDim() int { return 6 }
func (b *benchPlant) Derive(x dynamo.State, u dynamo.Control, t float64) (dynamo.State, dynamo.State) {
	dx := make(dynamo.State, 12)
	for i := 0; i < 6; i++ {
		dx[i] = u[i] - x[i]
		dx[6+i] = x[i]
	}
	return dx, x
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &benchPlant{}
	x := make(dynamo.State, 12)
	u := dynamo.Control{1, 0, 0, 0, 0, 0.1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, u, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchPlant{}
	x := make(dynamo.State, 12)
	u := dynamo.Control{1, 0, 0, 0, 0, 0.1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, u, 0, 0.01)
	}
}
