package integrators

import "github.com/san-kum/uwvsim/internal/dynamo"

var classicRK4 = &tableau{
	c: []float64{0, 0.5, 0.5, 1},
	a: [][]float64{
		{0.5},
		{0, 0.5},
		{0, 0, 1},
	},
	b: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
}

// RK4 is the classic fixed-step fourth-order Runge-Kutta scheme, the
// default for vehicle sub-steps.
type RK4 struct {
	explicit
}

func NewRK4() *RK4 {
	return &RK4{explicit{tb: classicRK4}}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return r.step(dyn, x, u, t, dt)
}
