package metrics

import (
	"fmt"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

// Defaults returns the metrics recorded for every scenario run of a vehicle
// with the given thruster count.
func Defaults(src InertiaSource, thrusters int) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(src),
		NewEnergyDrift(src),
		NewControlEffort(thrusters),
	}
}

// Lookup finds a metric by name.
func Lookup(ms []dynamo.Metric, name string) (dynamo.Metric, error) {
	for _, m := range ms {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("metric %q not recorded", name)
}
