package control

import "github.com/san-kum/uwvsim/internal/dynamo"

// Sum adds the outputs of several controllers slot by slot.
type Sum []dynamo.Controller

func (s Sum) Compute(x dynamo.State, t float64) dynamo.Control {
	var out dynamo.Control
	for _, c := range s {
		u := c.Compute(x, t)
		if out == nil {
			out = make(dynamo.Control, len(u))
		}
		for i := range u {
			if i < len(out) {
				out[i] += u[i]
			}
		}
	}
	return out
}

// Reset resets every member that keeps internal state.
func (s Sum) Reset() {
	for _, c := range s {
		if r, ok := c.(interface{ Reset() }); ok {
			r.Reset()
		}
	}
}
