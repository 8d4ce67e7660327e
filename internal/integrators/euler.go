package integrators

import "github.com/san-kum/uwvsim/internal/dynamo"

var forwardEuler = &tableau{c: []float64{0}, b: []float64{1}}

// Euler is the explicit first-order scheme, a cheap baseline for
// convergence comparisons.
type Euler struct {
	explicit
}

func NewEuler() *Euler {
	return &Euler{explicit{tb: forwardEuler}}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return e.step(dyn, x, u, t, dt)
}
