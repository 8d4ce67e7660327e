package integrators

import "github.com/san-kum/uwvsim/internal/dynamo"

// SemiImplicit is symplectic Euler for states laid out as
// [velocities | positions]: velocities advance with the acceleration at the
// start of the step, positions with the rates of the updated velocities.
// Split is the number of velocity entries; zero means half the state.
type SemiImplicit struct {
	Split   int
	scratch dynamo.State
}

func NewSemiImplicit(split int) *SemiImplicit {
	return &SemiImplicit{Split: split}
}

func (s *SemiImplicit) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := s.Split
	if half <= 0 || half > n {
		half = n / 2
	}
	if len(s.scratch) != n {
		s.scratch = make(dynamo.State, n)
	}

	dx, fixed := dyn.Derive(x, u, t)
	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[i] = fixed[i] + dt*dx[i]
		s.scratch[i] = result[i]
	}
	copy(s.scratch[half:], fixed[half:])

	dxNew, _ := dyn.Derive(s.scratch, u, t)
	for i := half; i < n; i++ {
		result[i] = fixed[i] + dt*dxNew[i]
	}
	return result
}
