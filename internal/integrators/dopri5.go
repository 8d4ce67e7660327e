package integrators

import (
	"math"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// Dormand-Prince 5(4). The seventh stage is evaluated at the fifth-order
// solution and only feeds the error estimate.
var dormandPrince = &tableau{
	c: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
	a: [][]float64{
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	},
	b: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
}

// fifth minus fourth order weights
var dormandPrinceErr = []float64{
	35.0/384 - 5179.0/57600,
	0,
	500.0/1113 - 7571.0/16695,
	125.0/192 - 393.0/640,
	-2187.0/6784 + 92097.0/339200,
	11.0/84 - 187.0/2100,
	-1.0 / 40,
}

// DOPRI5 takes fixed fifth-order Dormand-Prince steps. The embedded
// fourth-order solution only reports the local error of the last step;
// the step size never changes.
type DOPRI5 struct {
	explicit
	lastErr float64
}

func NewDOPRI5() *DOPRI5 {
	return &DOPRI5{explicit: explicit{tb: dormandPrince}}
}

// LastError is the scaled local error estimate of the most recent step.
func (d *DOPRI5) LastError() float64 { return d.lastErr }

func (d *DOPRI5) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	next := d.step(dyn, x, u, t, dt)

	d.lastErr = 0
	for i := range next {
		est := 0.0
		for s, w := range dormandPrinceErr {
			est += w * d.k[s][i]
		}
		scale := math.Abs(d.base[i]) + math.Abs(dt*d.k[0][i]) + 1e-10
		d.lastErr = math.Max(d.lastErr, math.Abs(dt*est)/scale)
	}
	return next
}
