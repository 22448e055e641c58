// Package dynamo provides the simulation primitives behind the model
// evaluations of an adaptive study.
//
// The package defines the interfaces and types for fixed-step numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: one-step numerical integrator
//   - [Configurable]: named, settable model parameters
//   - [Simulate]: runs a system over a [Config] and returns a [Trajectory]
//
// # Example
//
//	sys := physics.NewPendulum()
//	_ = sys.SetParam("damping", 0.3)
//	traj, err := dynamo.Simulate(ctx, sys, integrators.NewRK4(), x0, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Systems and integrators carry scratch state and are NOT thread-safe.
// Build one per goroutine.
package dynamo
