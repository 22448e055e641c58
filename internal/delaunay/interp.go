package delaunay

import "gonum.org/v1/gonum/mat"

// LinearInterpolator is a piecewise-linear interpolant over the Delaunay
// triangulation of its nodes.
type LinearInterpolator struct {
	tri    *Triangulation
	values []float64
}

// NewLinearInterpolator triangulates the columns of points and attaches
// one value per point.
func NewLinearInterpolator(points mat.Matrix, values []float64) (*LinearInterpolator, error) {
	_, n := points.Dims()
	if len(values) != n {
		return nil, ErrDimensionMismatch
	}
	tri, err := Triangulate(points)
	if err != nil {
		return nil, err
	}
	return &LinearInterpolator{
		tri:    tri,
		values: append([]float64(nil), values...),
	}, nil
}

// Eval evaluates the interpolant at p. The second result is false when p
// lies outside the convex hull of the nodes, where the interpolant is
// undefined.
func (li *LinearInterpolator) Eval(p []float64) (float64, bool) {
	i, lam := li.tri.FindSimplex(p)
	if i < 0 {
		return 0, false
	}
	v := 0.0
	for k, idx := range li.tri.Simplices[i] {
		v += lam[k] * li.values[idx]
	}
	return v, true
}

// Triangulation returns the underlying triangulation.
func (li *LinearInterpolator) Triangulation() *Triangulation { return li.tri }
