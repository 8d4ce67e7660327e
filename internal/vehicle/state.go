package vehicle

import (
	"fmt"
	"strings"
)

var stateNames = [StateDim]string{"u", "v", "w", "p", "q", "r", "x", "y", "z", "roll", "pitch", "yaw"}

// StateName is the short name of a state entry, used for CSV headers and
// controller configuration.
func StateName(i int) string {
	if i < 0 || i >= StateDim {
		return fmt.Sprintf("x%d", i)
	}
	return stateNames[i]
}

func StateNames() []string {
	return append([]string(nil), stateNames[:]...)
}

// StateIndex resolves a state entry by short name.
func StateIndex(name string) (int, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range stateNames {
		if s == n {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown state entry %q", name)
}

// IsAngle reports whether a state entry is an Euler angle.
func IsAngle(i int) bool {
	return i >= IdxEuler && i < StateDim
}
