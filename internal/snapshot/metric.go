package snapshot

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/adaptsim/internal/dynamo"
)

// Metric reduces a trajectory to one number, observing it state by state.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

var metricNames = map[string]func(sys dynamo.System, component int) (Metric, error){
	"energy": func(sys dynamo.System, _ int) (Metric, error) {
		h, ok := sys.(dynamo.Hamiltonian)
		if !ok {
			return nil, ErrNoEnergy
		}
		return NewEnergy(h), nil
	},
	"peak": func(_ dynamo.System, k int) (Metric, error) { return NewPeak(k), nil },
	"final": func(_ dynamo.System, k int) (Metric, error) { return NewFinal(k), nil },
	"frequency": func(_ dynamo.System, k int) (Metric, error) { return NewFrequency(k), nil },
}

// NewMetric builds the named metric for sys. Peak and final read state
// component k.
func NewMetric(name string, sys dynamo.System, k int) (Metric, error) {
	fn, ok := metricNames[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	return fn(sys, k)
}

// Metrics lists the known metric names.
func Metrics() []string {
	names := make([]string, 0, len(metricNames))
	for n := range metricNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Energy is the mean Hamiltonian energy over the observed states.
type Energy struct {
	h       dynamo.Hamiltonian
	total   float64
	samples int
}

func NewEnergy(h dynamo.Hamiltonian) *Energy {
	return &Energy{h: h}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(x dynamo.State, t float64) {
	e.total += e.h.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// Peak is the largest |x_k| seen.
type Peak struct {
	component int
	peak      float64
}

func NewPeak(component int) *Peak {
	return &Peak{component: component}
}

func (p *Peak) Name() string { return "peak" }

func (p *Peak) Observe(x dynamo.State, t float64) {
	p.peak = math.Max(p.peak, math.Abs(x[p.component]))
}

func (p *Peak) Value() float64 { return p.peak }
func (p *Peak) Reset()         { p.peak = 0 }

// Final is x_k of the last observed state.
type Final struct {
	component int
	last      float64
}

func NewFinal(component int) *Final {
	return &Final{component: component}
}

func (f *Final) Name() string { return "final" }

func (f *Final) Observe(x dynamo.State, t float64) {
	f.last = x[f.component]
}

func (f *Final) Value() float64 { return f.last }
func (f *Final) Reset()         { f.last = 0 }

// Frequency is the dominant frequency of x_k in cycles per unit time,
// taken from the largest non-constant bin of its power spectrum. It
// assumes evenly spaced observations.
type Frequency struct {
	component int
	series    []float64
	t0, t1    float64
}

func NewFrequency(component int) *Frequency {
	return &Frequency{component: component}
}

func (f *Frequency) Name() string { return "frequency" }

func (f *Frequency) Observe(x dynamo.State, t float64) {
	switch len(f.series) {
	case 0:
		f.t0 = t
	case 1:
		f.t1 = t
	}
	f.series = append(f.series, x[f.component])
}

func (f *Frequency) Value() float64 {
	n := len(f.series)
	if n < 4 || f.t1 <= f.t0 {
		return 0
	}

	centered := make([]float64, n)
	mean := stat.Mean(f.series, nil)
	for i, v := range f.series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)
	best, bestPow := 0, 0.0
	for i := 1; i < len(coeff); i++ {
		if p := cmplx.Abs(coeff[i]); p > bestPow {
			best, bestPow = i, p
		}
	}
	return fft.Freq(best) / (f.t1 - f.t0)
}

func (f *Frequency) Reset() {
	f.series = f.series[:0]
	f.t0, f.t1 = 0, 0
}
