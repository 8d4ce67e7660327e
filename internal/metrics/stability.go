package metrics

import (
	"math"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// Stability is the fraction of samples inside a speed envelope: every
// watched state entry within ±limit. With no indices every entry is
// watched; indices past the end of the state are ignored.
type Stability struct {
	limit     float64
	watch     []int
	inside    int
	samples   int
	firstExit float64
}

func NewStability(limit float64, watch ...int) *Stability {
	s := &Stability{limit: limit, watch: watch}
	s.Reset()
	return s
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) within(x dynamo.State) bool {
	if len(s.watch) == 0 {
		for _, v := range x {
			if math.Abs(v) > s.limit {
				return false
			}
		}
		return true
	}
	for _, i := range s.watch {
		if i < len(x) && math.Abs(x[i]) > s.limit {
			return false
		}
	}
	return true
}

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if s.within(x) {
		s.inside++
	} else if s.firstExit < 0 {
		s.firstExit = t
	}
}

// FirstExit is the time of the first sample outside the envelope, or -1.
func (s *Stability) FirstExit() float64 { return s.firstExit }

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1
	}
	return float64(s.inside) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.inside, s.samples = 0, 0
	s.firstExit = -1
}
