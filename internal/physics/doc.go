// Package physics provides parameterised dynamical system models whose
// simulated responses serve as study snapshots.
//
// Each model implements [dynamo.System] and [dynamo.Configurable]; the
// parameters swept by a study are set by name through SetParam:
//
//   - [Pendulum]: damped pendulum (mass, length, damping, gravity)
//   - [Duffing]: forced nonlinear oscillator (alpha, beta, delta, gamma, omega)
//   - [VanDerPol]: relaxation oscillator (mu)
//   - [SpringMass]: damped spring-mass chain (mass, stiffness, damping)
//
// Models that conserve energy in the undamped limit also implement
// [dynamo.Hamiltonian]:
//
//	sys := physics.NewPendulum()
//	if h, ok := any(sys).(dynamo.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package physics

import (
	"fmt"

	"github.com/san-kum/adaptsim/internal/dynamo"
)

func unknownParam(model, name string) error {
	return fmt.Errorf("%w: %s has no parameter %q", dynamo.ErrUnknownParam, model, name)
}
