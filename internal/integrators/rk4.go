package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/adaptsim/internal/dynamo"
)

// RK4 is the classical fourth-order Runge-Kutta method. Stage buffers are
// reused between steps, so an RK4 must not be shared across goroutines.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.ensureScratch(len(x))
	half := 0.5 * dt

	copy(r.k[0], sys.Derive(x, u, t))

	floats.AddScaledTo(r.scratch, x, half, r.k[0])
	copy(r.k[1], sys.Derive(r.scratch, u, t+half))

	floats.AddScaledTo(r.scratch, x, half, r.k[1])
	copy(r.k[2], sys.Derive(r.scratch, u, t+half))

	floats.AddScaledTo(r.scratch, x, dt, r.k[2])
	copy(r.k[3], sys.Derive(r.scratch, u, t+dt))

	next := x.Clone()
	dt6 := dt / 6.0
	floats.AddScaled(next, dt6, r.k[0])
	floats.AddScaled(next, 2*dt6, r.k[1])
	floats.AddScaled(next, 2*dt6, r.k[2])
	floats.AddScaled(next, dt6, r.k[3])
	return next
}
