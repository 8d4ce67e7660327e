package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

type diagInertia []float64

func (d diagInertia) InertiaMatrix(nu []float64) *mat.DiagDense {
	return mat.NewDiagDense(len(d), append([]float64(nil), d...))
}

func state(nu ...float64) dynamo.State {
	x := make(dynamo.State, 12)
	copy(x, nu)
	return x
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy(diagInertia{2, 1, 1, 200, 200, 100})

	m.Observe(state(1, 0, 0, 0.05, 0, 0.01), nil, 0)
	want := 0.5 * (2 + 200*0.0025 + 100*0.0001)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected energy %f, got %f", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(diagInertia{1, 1, 1, 1, 1, 1})

	m.Observe(state(2), nil, 0)
	m.Observe(state(0, 2), nil, 1)
	if m.Value() != 0 {
		t.Errorf("energy moved between DOFs only, drift %f", m.Value())
	}

	m.Observe(state(1), nil, 2)
	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected drift 0.75, got %f", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	tests := []struct {
		name      string
		thrusters int
		controls  []dynamo.Control
		want      float64
		perSlot   []float64
	}{
		{"two thrusters", 2, []dynamo.Control{{1, -1}, {0, 0}}, 0.5, []float64{0.5, 0.5}},
		{"one slot busy", 4, []dynamo.Control{{0, 2, 0, 0}, {0, -2, 0, 0}}, 0.5, []float64{0, 2, 0, 0}},
		{"extra slots ignored", 1, []dynamo.Control{{3, 9}}, 3, []float64{3}},
		{"short command is idle", 3, []dynamo.Control{{3}}, 1, []float64{3, 0, 0}},
		{"no samples", 2, nil, 0, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewControlEffort(tt.thrusters)
			for i, u := range tt.controls {
				m.Observe(nil, u, float64(i))
			}
			if m.Value() != tt.want {
				t.Errorf("Value() = %f, want %f", m.Value(), tt.want)
			}
			got := m.PerThruster()
			for i := range tt.perSlot {
				if got[i] != tt.perSlot[i] {
					t.Errorf("PerThruster()[%d] = %f, want %f", i, got[i], tt.perSlot[i])
				}
			}
			m.Reset()
			if m.Value() != 0 {
				t.Errorf("Value() after Reset = %f", m.Value())
			}
		})
	}
}

func TestStability(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		want    float64
	}{
		{"all entries", nil, 0.5},
		{"surge only", []int{0}, 1.0},
		{"out of range index", []int{40}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStability(1.0, tt.indices...)
			m.Observe(state(0.5), nil, 0)
			m.Observe(state(0.5, 3), nil, 1)
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestStabilityFirstExit(t *testing.T) {
	m := NewStability(1.0, 1)
	if m.FirstExit() != -1 {
		t.Fatalf("fresh metric reports exit at %f", m.FirstExit())
	}
	m.Observe(state(0, 0.5), nil, 0)
	m.Observe(state(0, 2), nil, 0.3)
	m.Observe(state(0, 3), nil, 0.4)
	if m.FirstExit() != 0.3 {
		t.Errorf("FirstExit() = %f, want 0.3", m.FirstExit())
	}
	m.Reset()
	if m.FirstExit() != -1 || m.Value() != 1 {
		t.Errorf("reset left exit %f value %f", m.FirstExit(), m.Value())
	}
}

func TestTrackingError(t *testing.T) {
	m := NewTrackingError(8, 5, false)
	x := state()

	for i := 0; i <= 10; i++ {
		x[8] = 4
		m.Observe(x, nil, float64(i)*0.1)
	}
	if math.Abs(m.Value()-1.0) > 1e-12 {
		t.Errorf("expected IAE 1.0, got %f", m.Value())
	}

	h := NewTrackingError(11, math.Pi-0.1, true)
	x[11] = -math.Pi + 0.1
	h.Observe(x, nil, 0)
	h.Observe(x, nil, 1)
	if math.Abs(h.Value()-0.2) > 1e-9 {
		t.Errorf("expected wrapped heading error 0.2, got %f", h.Value())
	}
}

func TestDefaultsAndLookup(t *testing.T) {
	ms := Defaults(diagInertia{1, 1, 1, 1, 1, 1}, 6)
	if _, err := Lookup(ms, "control_effort"); err != nil {
		t.Error(err)
	}
	if _, err := Lookup(ms, "tracking_error"); err == nil {
		t.Error("expected error for missing metric")
	}
}
