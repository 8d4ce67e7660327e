package vehicle

import (
	"errors"
	"fmt"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

var (
	// ErrInvalidMapping reports a thruster mapping that does not match the
	// configured thrusters.
	ErrInvalidMapping = errors.New("vehicle: invalid thruster mapping")

	// ErrNonPositiveInertia reports a mass or added-mass entry <= 0.
	ErrNonPositiveInertia = fmt.Errorf("%w: non-positive inertia", dynamo.ErrParameterBounds)
)
