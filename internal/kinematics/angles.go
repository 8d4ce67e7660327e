package kinematics

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// GimbalLockEpsilon bounds |cos(pitch)| below which the Euler-rate inverse
// is treated as singular.
const GimbalLockEpsilon = 1e-9

// Euler holds roll, pitch and yaw in radians.
type Euler struct {
	Roll  float64 `yaml:"roll" json:"roll"`
	Pitch float64 `yaml:"pitch" json:"pitch"`
	Yaw   float64 `yaml:"yaw" json:"yaw"`
}

// WrapAngle applies a single 2π correction so an angle that left (-π, π]
// by less than one turn comes back in range. Values already in range are
// returned unchanged.
func WrapAngle(a float64) float64 {
	if a > math.Pi {
		return a - 2*math.Pi
	}
	if a < -math.Pi {
		return a + 2*math.Pi
	}
	return a
}

// NormalizeAngle maps any finite angle into [-π, π].
func NormalizeAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

func (e Euler) Wrapped() Euler {
	return Euler{Roll: WrapAngle(e.Roll), Pitch: WrapAngle(e.Pitch), Yaw: WrapAngle(e.Yaw)}
}

func (e Euler) Slice() []float64 {
	return []float64{e.Roll, e.Pitch, e.Yaw}
}

// EulerToQuat converts ZYX Euler angles to a unit quaternion.
func EulerToQuat(e Euler) quat.Number {
	cr, sr := math.Cos(e.Roll/2), math.Sin(e.Roll/2)
	cp, sp := math.Cos(e.Pitch/2), math.Sin(e.Pitch/2)
	cy, sy := math.Cos(e.Yaw/2), math.Sin(e.Yaw/2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// QuatToEuler converts a unit quaternion to ZYX Euler angles. Pitch is
// clamped to ±π/2 when rounding pushes the sine argument out of [-1, 1].
func QuatToEuler(q quat.Number) Euler {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sp := 2 * (w*y - z*x)
	if sp > 1 {
		sp = 1
	} else if sp < -1 {
		sp = -1
	}

	return Euler{
		Roll:  math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		Pitch: math.Asin(sp),
		Yaw:   math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}

// QuatAngle is the rotation angle between two unit quaternions, in [0, π].
// q and -q describe the same attitude and give zero.
func QuatAngle(a, b quat.Number) float64 {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	dot = math.Abs(dot)
	if dot > 1 {
		dot = 1
	}
	return 2 * math.Acos(dot)
}
