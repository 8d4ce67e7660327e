package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

var factories = map[string]func() dynamo.Integrator{
	"rk4":           func() dynamo.Integrator { return NewRK4() },
	"euler":         func() dynamo.Integrator { return NewEuler() },
	"dopri5":        func() dynamo.Integrator { return NewDOPRI5() },
	"semi-implicit": func() dynamo.Integrator { return NewSemiImplicit(0) },
}

// Get returns a fresh integrator by name.
func Get(name string) (dynamo.Integrator, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
