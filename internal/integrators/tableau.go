package integrators

import "github.com/san-kum/uwvsim/internal/dynamo"

// tableau is an explicit Runge-Kutta scheme in Butcher form. a is strictly
// lower triangular and stored row by row without the zero diagonal.
type tableau struct {
	c []float64
	a [][]float64
	b []float64
}

func (tb *tableau) stages() int { return len(tb.b) }

// explicit holds the per-stage scratch buffers for one tableau.
type explicit struct {
	tb      *tableau
	k       []dynamo.State
	base    dynamo.State
	scratch dynamo.State
}

func (e *explicit) ensure(n int) {
	if len(e.base) == n {
		return
	}
	e.k = make([]dynamo.State, e.tb.stages())
	for i := range e.k {
		e.k[i] = make(dynamo.State, n)
	}
	e.base = make(dynamo.State, n)
	e.scratch = make(dynamo.State, n)
}

// step evaluates every stage from the corrected state of the first
// evaluation and returns the weighted update. Derivatives are copied out of
// the system because a System may reuse its return buffers.
func (e *explicit) step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	e.ensure(n)

	k0, fixed := dyn.Derive(x, u, t)
	copy(e.k[0], k0)
	copy(e.base, fixed)

	for s := 1; s < e.tb.stages(); s++ {
		row := e.tb.a[s-1]
		for i := 0; i < n; i++ {
			acc := 0.0
			for j, aj := range row {
				acc += aj * e.k[j][i]
			}
			e.scratch[i] = e.base[i] + dt*acc
		}
		ks, _ := dyn.Derive(e.scratch, u, t+e.tb.c[s]*dt)
		copy(e.k[s], ks)
	}

	return e.combine(e.tb.b, dt)
}

func (e *explicit) combine(weights []float64, dt float64) dynamo.State {
	out := make(dynamo.State, len(e.base))
	for i := range out {
		acc := 0.0
		for s, w := range weights {
			if w != 0 {
				acc += w * e.k[s][i]
			}
		}
		out[i] = e.base[i] + dt*acc
	}
	return out
}
