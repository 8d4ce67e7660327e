package vehicle

import (
	"fmt"
	"strings"
)

// DOF indexes one of the six rigid-body degrees of freedom.
type DOF int

const (
	Surge DOF = iota
	Sway
	Heave
	Roll
	Pitch
	Yaw
)

const NumDOF = 6

var dofNames = [NumDOF]string{"surge", "sway", "heave", "roll", "pitch", "yaw"}

func AllDOF() []DOF {
	return []DOF{Surge, Sway, Heave, Roll, Pitch, Yaw}
}

func (d DOF) Valid() bool {
	return d >= Surge && d <= Yaw
}

func (d DOF) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DOF(%d)", int(d))
	}
	return dofNames[d]
}

// ParseDOF accepts a DOF name in any case.
func ParseDOF(s string) (DOF, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range dofNames {
		if n == name {
			return DOF(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown DOF label %q", ErrInvalidMapping, s)
}

func (d DOF) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: DOF %d out of range", ErrInvalidMapping, int(d))
	}
	return []byte(d.String()), nil
}

func (d *DOF) UnmarshalText(b []byte) error {
	parsed, err := ParseDOF(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
