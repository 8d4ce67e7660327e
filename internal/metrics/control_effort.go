package metrics

import (
	"math"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// ControlEffort is the mean absolute command per thruster per sample.
// Slots past the thruster count are ignored; a short command vector
// counts its missing slots as idle.
type ControlEffort struct {
	perSlot []float64
	samples int
}

func NewControlEffort(thrusters int) *ControlEffort {
	return &ControlEffort{perSlot: make([]float64, thrusters)}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for i := range c.perSlot {
		if i < len(u) {
			c.perSlot[i] += math.Abs(u[i])
		}
	}
	c.samples++
}

// PerThruster is the mean absolute command of each thruster.
func (c *ControlEffort) PerThruster() []float64 {
	out := make([]float64, len(c.perSlot))
	if c.samples == 0 {
		return out
	}
	for i, s := range c.perSlot {
		out[i] = s / float64(c.samples)
	}
	return out
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 || len(c.perSlot) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range c.perSlot {
		total += s
	}
	return total / float64(c.samples*len(c.perSlot))
}

func (c *ControlEffort) Reset() {
	for i := range c.perSlot {
		c.perSlot[i] = 0
	}
	c.samples = 0
}
