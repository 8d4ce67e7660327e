package control

import "github.com/san-kum/uwvsim/internal/dynamo"

// None leaves every one of its thrusters idle.
type None int

func (n None) Compute(x dynamo.State, t float64) dynamo.Control {
	return make(dynamo.Control, int(n))
}
