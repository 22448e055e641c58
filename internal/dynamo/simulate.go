package dynamo

import (
	"context"
	"fmt"
)

// Simulate integrates sys from x0 with a fixed step for cfg.Steps() steps
// under zero control. The context is checked before every step; a NaN or
// Inf state stops the run with a *SimulationError wrapping
// ErrInvalidState.
func Simulate(ctx context.Context, sys System, integ Integrator, x0 State, cfg Config) (*Trajectory, error) {
	if !(cfg.Dt > 0) || !(cfg.Duration > 0) {
		return nil, fmt.Errorf("%w: dt=%g duration=%g", ErrInvalidConfig, cfg.Dt, cfg.Duration)
	}
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d", ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return nil, &SimulationError{State: x0.Clone(), Wrapped: ErrInvalidState}
	}

	steps := cfg.Steps()
	traj := &Trajectory{
		States: make([]State, 0, steps+1),
		Times:  make([]float64, 0, steps+1),
	}

	u := make(Control, sys.ControlDim())
	x := x0.Clone()
	t := 0.0
	traj.States = append(traj.States, x.Clone())
	traj.Times = append(traj.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return traj, ctx.Err()
		default:
		}

		next := integ.Step(sys, x, u, t, cfg.Dt)
		if !next.IsValid() {
			return traj, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		x = next
		t = float64(i+1) * cfg.Dt
		traj.States = append(traj.States, x.Clone())
		traj.Times = append(traj.Times, t)
	}
	return traj, nil
}
