package analysis

import (
	"fmt"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// Point is one sample in a two-variable projection of the state.
type Point struct{ X, Y float64 }

// Portrait is a state trajectory projected onto two indices.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
}

// XY splits the points into coordinate slices for plotting.
func (p *Portrait) XY() (xs, ys []float64) {
	xs = make([]float64, len(p.Points))
	ys = make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return xs, ys
}

func NewPortrait(res *dynamo.Result, xIdx, yIdx int) (*Portrait, error) {
	if len(res.States) == 0 {
		return nil, ErrShortSeries
	}
	dim := len(res.States[0])
	if xIdx < 0 || xIdx >= dim || yIdx < 0 || yIdx >= dim {
		return nil, fmt.Errorf("%w: indices (%d, %d) for %d states", dynamo.ErrDimensionMismatch, xIdx, yIdx, dim)
	}

	p := &Portrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, len(res.States))}
	for i, x := range res.States {
		p.Points[i] = Point{X: x[xIdx], Y: x[yIdx]}
	}
	return p, nil
}

// Crossing is a sample interpolated to where a variable rose through a level.
type Crossing struct {
	Time float64
	Point
}

// Section records upward crossings of state[crossIdx] through level, with
// the recorded pair linearly interpolated to the crossing instant.
func Section(res *dynamo.Result, crossIdx int, level float64, xIdx, yIdx int) ([]Crossing, error) {
	p, err := NewPortrait(res, xIdx, yIdx)
	if err != nil {
		return nil, err
	}
	if crossIdx < 0 || crossIdx >= len(res.States[0]) {
		return nil, fmt.Errorf("%w: crossing index %d", dynamo.ErrDimensionMismatch, crossIdx)
	}

	var out []Crossing
	for i := 1; i < len(res.States); i++ {
		prev, cur := res.States[i-1][crossIdx], res.States[i][crossIdx]
		if prev >= level || cur < level {
			continue
		}
		frac := (level - prev) / (cur - prev)
		a, b := p.Points[i-1], p.Points[i]
		out = append(out, Crossing{
			Time:  lerp(res.Times[i-1], res.Times[i], frac),
			Point: Point{X: lerp(a.X, b.X, frac), Y: lerp(a.Y, b.Y, frac)},
		})
	}
	return out, nil
}

func lerp(a, b, f float64) float64 { return a + (b-a)*f }
