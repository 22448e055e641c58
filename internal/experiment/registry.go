package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/adaptsim/internal/dynamo"
	"github.com/san-kum/adaptsim/internal/integrators"
	"github.com/san-kum/adaptsim/internal/physics"
)

// Registry maps model and integrator names to constructors.
type Registry struct {
	models      map[string]func() dynamo.System
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() dynamo.System),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.models["pendulum"] = func() dynamo.System { return physics.NewPendulum() }
	r.models["duffing"] = func() dynamo.System { return physics.NewDuffing() }
	r.models["vanderpol"] = func() dynamo.System { return physics.NewVanDerPol() }
	r.models["spring_mass"] = func() dynamo.System { return physics.NewSpringMass() }
	r.models["spring_chain"] = func() dynamo.System { return physics.NewSpringMassChain(3) }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

// ModelFactory returns the constructor of a model.
func (r *Registry) ModelFactory(name string) (func() dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return fn, nil
}

// IntegratorFactory returns the constructor of an integrator.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn, nil
}

func (r *Registry) GetModel(name string) (dynamo.System, error) {
	fn, err := r.ModelFactory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
