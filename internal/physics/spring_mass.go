package physics

import "github.com/san-kum/adaptsim/internal/dynamo"

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a chain of masses joined by springs, fixed to walls at
// both ends when len(Stiffness) == NumMasses+1. State: positions then
// velocities.
type SpringMass struct {
	NumMasses int
	Masses    []float64
	Stiffness []float64
	Damping   []float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		NumMasses: 1,
		Masses:    []float64{DefaultMass},
		Stiffness: []float64{DefaultStiffness},
		Damping:   []float64{DefaultDamping},
	}
}

func NewSpringMassChain(n int) *SpringMass {
	masses := make([]float64, n)
	stiffness := make([]float64, n+1)
	damping := make([]float64, n)

	for i := 0; i < n; i++ {
		masses[i] = DefaultMass
		stiffness[i] = DefaultStiffness
		damping[i] = 0.2
	}
	stiffness[n] = DefaultStiffness

	return &SpringMass{
		NumMasses: n,
		Masses:    masses,
		Stiffness: stiffness,
		Damping:   damping,
	}
}

func (s *SpringMass) StateDim() int   { return s.NumMasses * 2 }
func (s *SpringMass) ControlDim() int { return 1 }

func (s *SpringMass) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n := s.NumMasses
	dx := make(dynamo.State, n*2)
	copy(dx[:n], x[n:])

	extForce := 0.0
	if len(u) > 0 {
		extForce = u[0]
	}

	for i := 0; i < n; i++ {
		pos, vel := x[i], x[n+i]

		var left, right float64
		if i == 0 {
			left = -s.Stiffness[0] * pos
		} else {
			left = -s.Stiffness[i] * (pos - x[i-1])
		}
		if i < n-1 {
			right = -s.Stiffness[i+1] * (pos - x[i+1])
		} else if len(s.Stiffness) > n {
			right = -s.Stiffness[n] * pos
		}

		force := left + right - s.Damping[i]*vel
		if i == 0 {
			force += extForce
		}
		dx[n+i] = force / s.Masses[i]
	}
	return dx
}

// DefaultState displaces the first mass by one unit.
func (s *SpringMass) DefaultState() dynamo.State {
	x := make(dynamo.State, 2*s.NumMasses)
	x[0] = 1
	return x
}

func (s *SpringMass) Energy(x dynamo.State) float64 {
	n := s.NumMasses
	energy := 0.0

	for i := 0; i < n; i++ {
		v := x[n+i]
		energy += 0.5 * s.Masses[i] * v * v
	}
	for i := 0; i < n; i++ {
		stretch := x[i]
		if i > 0 {
			stretch -= x[i-1]
		}
		energy += 0.5 * s.Stiffness[i] * stretch * stretch
	}
	if len(s.Stiffness) > n {
		energy += 0.5 * s.Stiffness[n] * x[n-1] * x[n-1]
	}
	return energy
}

// GetParams reports the values of the first mass, spring and damper.
func (s *SpringMass) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":      s.Masses[0],
		"stiffness": s.Stiffness[0],
		"damping":   s.Damping[0],
	}
}

// SetParam sets the named quantity on every element of the chain.
func (s *SpringMass) SetParam(name string, value float64) error {
	var target []float64
	switch name {
	case "mass":
		target = s.Masses
	case "stiffness":
		target = s.Stiffness
	case "damping":
		target = s.Damping
	default:
		return unknownParam("spring_mass", name)
	}
	for i := range target {
		target[i] = value
	}
	return nil
}
