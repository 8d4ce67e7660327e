package metrics

import (
	"math"

	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/kinematics"
)

// TrackingError integrates |target − x[index]| over time (IAE).
type TrackingError struct {
	name    string
	index   int
	target  float64
	angular bool
	sum     float64
	prevT   float64
	samples int
}

func NewTrackingError(index int, target float64, angular bool) *TrackingError {
	return &TrackingError{
		name:    "tracking_error",
		index:   index,
		target:  target,
		angular: angular,
	}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if m.index >= len(x) {
		return
	}
	e := m.target - x[m.index]
	if m.angular {
		e = kinematics.NormalizeAngle(e)
	}
	if m.samples > 0 {
		m.sum += math.Abs(e) * (t - m.prevT)
	}
	m.prevT = t
	m.samples++
}

func (m *TrackingError) Value() float64 { return m.sum }

func (m *TrackingError) Reset() {
	m.sum = 0
	m.prevT = 0
	m.samples = 0
}
