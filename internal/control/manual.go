package control

import (
	"math"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// Manual holds an operator-set command vector. Values are clamped to
// [-Limit, Limit] when Limit is positive.
type Manual struct {
	U     []float64
	Limit float64
}

func NewManual(commands []float64) *Manual {
	u := make([]float64, len(commands))
	copy(u, commands)
	return &Manual{U: u}
}

// Set replaces the command vector; a length mismatch is ignored.
func (c *Manual) Set(u []float64) {
	if len(u) != len(c.U) {
		return
	}
	for i, v := range u {
		c.U[i] = c.clamp(v)
	}
}

// Nudge adds delta to one slot.
func (c *Manual) Nudge(slot int, delta float64) {
	if slot < 0 || slot >= len(c.U) {
		return
	}
	c.U[slot] = c.clamp(c.U[slot] + delta)
}

func (c *Manual) clamp(v float64) float64 {
	if c.Limit <= 0 {
		return v
	}
	return math.Max(-c.Limit, math.Min(c.Limit, v))
}

// Compute returns a copy of the stored command vector.
func (c *Manual) Compute(state dynamo.State, t float64) dynamo.Control {
	out := make(dynamo.Control, len(c.U))
	copy(out, c.U)
	return out
}
