package experiment

import (
	"github.com/san-kum/adaptsim/internal/config"
	"github.com/san-kum/adaptsim/internal/dynamo"
	"github.com/san-kum/adaptsim/internal/sampling"
	"github.com/san-kum/adaptsim/internal/snapshot"
)

// NewStudy validates cfg and wires a simulation-backed study from it.
func NewStudy(cfg *config.Config, reg *Registry) (*Study, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	newSystem, err := reg.ModelFactory(cfg.Model)
	if err != nil {
		return nil, err
	}
	newIntegrator, err := reg.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	output, err := snapshot.ParseOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	policy, err := sampling.ParseZeroErrorPolicy(cfg.Sampling.ZeroErrorPolicy)
	if err != nil {
		return nil, err
	}

	var x0 dynamo.State
	if len(cfg.InitState) > 0 {
		x0 = dynamo.State(cfg.InitState).Clone()
	}
	eval, err := snapshot.NewSimulationEvaluator(snapshot.SimulationSpec{
		NewSystem:     newSystem,
		NewIntegrator: newIntegrator,
		Params:        cfg.ParamNames(),
		InitState:     x0,
		Config:        dynamo.Config{Dt: cfg.Dt, Duration: cfg.Duration},
		Output:        output,
		Component:     cfg.Component,
		Metric:        cfg.Metric,
	})
	if err != nil {
		return nil, err
	}

	bounds := make([]Bound, len(cfg.Params))
	for i, p := range cfg.Params {
		bounds[i] = Bound{Name: p.Name, Min: p.Min, Max: p.Max}
	}

	return &Study{
		Model:     cfg.Model,
		Evaluator: eval,
		Bounds:    bounds,
		Levels:    cfg.Sampling.Levels,
		Tol:       cfg.Sampling.Tolerance,
		MaxRounds: cfg.Sampling.MaxRounds,
		Policy:    policy,
	}, nil
}
