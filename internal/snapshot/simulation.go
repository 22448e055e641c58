package snapshot

import (
	"context"
	"fmt"

	"github.com/san-kum/adaptsim/internal/dynamo"
)

// Output selects what a SimulationEvaluator reports.
type Output int

const (
	// OutputField reports one state component at every time step.
	OutputField Output = iota
	// OutputScalar reports a single metric of the trajectory.
	OutputScalar
)

func (o Output) String() string {
	switch o {
	case OutputField:
		return "field"
	case OutputScalar:
		return "scalar"
	default:
		return fmt.Sprintf("Output(%d)", int(o))
	}
}

// ParseOutput maps "field" or "scalar" to an Output.
func ParseOutput(s string) (Output, error) {
	switch s {
	case "field":
		return OutputField, nil
	case "scalar":
		return OutputScalar, nil
	default:
		return 0, fmt.Errorf("unknown output: %s", s)
	}
}

// SimulationSpec describes how parameter vectors become simulations.
type SimulationSpec struct {
	NewSystem     func() dynamo.System
	NewIntegrator func() dynamo.Integrator
	// Params names the system parameters set from mu, in order.
	Params []string
	// InitState is the initial state; nil uses the system's DefaultState.
	InitState dynamo.State
	Config    dynamo.Config
	Output    Output
	Component int
	// Metric names the scalar output, one of Metrics().
	Metric string
}

// SimulationEvaluator runs one simulation per evaluation on a freshly
// built system.
type SimulationEvaluator struct {
	spec SimulationSpec
}

// NewSimulationEvaluator checks spec against a probe system and returns
// the evaluator.
func NewSimulationEvaluator(spec SimulationSpec) (*SimulationEvaluator, error) {
	if !(spec.Config.Dt > 0) || !(spec.Config.Duration > 0) {
		return nil, fmt.Errorf("%w: dt=%g duration=%g", dynamo.ErrInvalidConfig, spec.Config.Dt, spec.Config.Duration)
	}

	probe := spec.NewSystem()
	conf, ok := probe.(dynamo.Configurable)
	if !ok && len(spec.Params) > 0 {
		return nil, ErrNotConfigurable
	}
	if ok {
		known := conf.GetParams()
		for _, name := range spec.Params {
			if _, found := known[name]; !found {
				return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
			}
		}
	}

	if spec.InitState != nil && len(spec.InitState) != probe.StateDim() {
		return nil, fmt.Errorf("%w: init state has %d components, system wants %d",
			dynamo.ErrDimensionMismatch, len(spec.InitState), probe.StateDim())
	}
	if spec.InitState == nil {
		if _, ok := probe.(dynamo.DefaultStater); !ok {
			return nil, fmt.Errorf("%w: no init state and no default", dynamo.ErrInvalidState)
		}
	}
	if spec.Component < 0 || spec.Component >= probe.StateDim() {
		return nil, fmt.Errorf("%w: %d of %d", ErrComponent, spec.Component, probe.StateDim())
	}

	switch spec.Output {
	case OutputField:
	case OutputScalar:
		if _, err := NewMetric(spec.Metric, probe, spec.Component); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown output: %v", spec.Output)
	}

	return &SimulationEvaluator{spec: spec}, nil
}

func (e *SimulationEvaluator) ParamDim() int { return len(e.spec.Params) }

func (e *SimulationEvaluator) OutputDim() int {
	if e.spec.Output == OutputScalar {
		return 1
	}
	return e.spec.Config.Steps() + 1
}

// Weights returns trapezoid quadrature weights on the time grid for field
// output and nil for scalar output.
func (e *SimulationEvaluator) Weights() []float64 {
	if e.spec.Output != OutputField {
		return nil
	}
	dt := e.spec.Config.Dt
	w := make([]float64, e.OutputDim())
	for i := range w {
		w[i] = dt
	}
	w[0] = dt / 2
	w[len(w)-1] = dt / 2
	return w
}

func (e *SimulationEvaluator) Evaluate(ctx context.Context, mu []float64) ([]float64, error) {
	if len(mu) != len(e.spec.Params) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrParamDim, len(mu), len(e.spec.Params))
	}

	sys := e.spec.NewSystem()
	if len(mu) > 0 {
		conf := sys.(dynamo.Configurable)
		for i, name := range e.spec.Params {
			if err := conf.SetParam(name, mu[i]); err != nil {
				return nil, err
			}
		}
	}

	x0 := e.spec.InitState
	if x0 == nil {
		x0 = sys.(dynamo.DefaultStater).DefaultState()
	}

	traj, err := dynamo.Simulate(ctx, sys, e.spec.NewIntegrator(), x0, e.spec.Config)
	if err != nil {
		return nil, fmt.Errorf("snapshot: simulate at %v: %w", mu, err)
	}

	if e.spec.Output == OutputField {
		return traj.Component(e.spec.Component), nil
	}

	m, err := NewMetric(e.spec.Metric, sys, e.spec.Component)
	if err != nil {
		return nil, err
	}
	for i, x := range traj.States {
		m.Observe(x, traj.Times[i])
	}
	return []float64{m.Value()}, nil
}
