package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, u Control, t float64, dt float64) State
}

// Configurable is a system with named scalar parameters. SetParam returns
// an error wrapping ErrUnknownParam for names it does not define.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// DefaultStater supplies an initial state for a system.
type DefaultStater interface {
	DefaultState() State
}

type Config struct {
	Dt       float64
	Duration float64
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.01,
		Duration: 10.0,
	}
}

// Steps returns the number of integration steps, rounded so that
// Duration/Dt values like 10/0.01 do not lose a step to truncation.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

// Trajectory is a sampled solution: States[i] at Times[i], Times[0] = 0.
type Trajectory struct {
	States []State
	Times  []float64
}

// Len returns the number of samples.
func (tr *Trajectory) Len() int { return len(tr.States) }

// Component returns state component k at every sample.
func (tr *Trajectory) Component(k int) []float64 {
	out := make([]float64, len(tr.States))
	for i, x := range tr.States {
		out[i] = x[k]
	}
	return out
}

// Final returns the last state.
func (tr *Trajectory) Final() State {
	return tr.States[len(tr.States)-1]
}
