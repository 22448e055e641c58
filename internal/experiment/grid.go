package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Bound is the sampled range of one named parameter.
type Bound struct {
	Name     string
	Min, Max float64
}

// Grid returns the full-factorial design with levels evenly spaced values
// per parameter, one point per column. The first parameter varies
// slowest.
func Grid(bounds []Bound, levels int) (*mat.Dense, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("%w: no parameters", ErrInvalidBounds)
	}
	if levels < 2 {
		return nil, ErrLevels
	}

	ranges := make([][]float64, len(bounds))
	for i, b := range bounds {
		if !(b.Min < b.Max) {
			return nil, fmt.Errorf("%w: %s [%g, %g]", ErrInvalidBounds, b.Name, b.Min, b.Max)
		}
		ranges[i] = floats.Span(make([]float64, levels), b.Min, b.Max)
	}

	var cols [][]float64
	gridRecursive(ranges, 0, make([]float64, len(bounds)), &cols)

	m := mat.NewDense(len(bounds), len(cols), nil)
	for j, c := range cols {
		m.SetCol(j, c)
	}
	return m, nil
}

func gridRecursive(ranges [][]float64, depth int, current []float64, out *[][]float64) {
	if depth == len(ranges) {
		*out = append(*out, append([]float64(nil), current...))
		return
	}
	for _, v := range ranges[depth] {
		current[depth] = v
		gridRecursive(ranges, depth+1, current, out)
	}
}
