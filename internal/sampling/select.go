package sampling

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/adaptsim/internal/delaunay"
)

// Selection describes one AddNewPoint round.
type Selection struct {
	// Point is the appended parameter point.
	Point []float64
	// Simplex indexes the worst simplex in the pre-insertion triangulation.
	Simplex int
	// Vertices are the sample indices of that simplex.
	Vertices []int
	// Scores holds (Σ vertex errors) × volume per simplex.
	Scores []float64
	// Errors are the leave-one-out errors the round was based on.
	Errors []float64
	// MaxError is the largest entry of Errors.
	MaxError float64
	// Uniform reports that all vertex errors were zero and the plain
	// centroid was used.
	Uniform bool
	// Triangulation is the triangulation including the new point.
	Triangulation *delaunay.Triangulation
}

// AddNewPoint estimates leave-one-out errors, picks the simplex with the
// largest summed-error-times-volume score (first one on ties) and appends
// the error-weighted centroid of its vertices to the parameter points.
//
// The snapshot of the new point must be supplied with AppendSnapshot
// before the next round. Degenerate point sets fail with an error
// wrapping delaunay.ErrDegenerate or delaunay.ErrTooFewPoints.
func (s *Sampler) AddNewPoint() (*Selection, error) {
	errs, err := s.EstimateErrors()
	if err != nil {
		return nil, err
	}
	s.maxError = floats.Max(errs)
	s.hasMax = true

	tri, err := delaunay.Triangulate(s.Points())
	if err != nil {
		return nil, fmt.Errorf("sampling: triangulate %d points: %w", len(s.points), err)
	}

	scores := make([]float64, len(tri.Simplices))
	for i, simplex := range tri.Simplices {
		sum := 0.0
		for _, v := range simplex {
			sum += errs[v]
		}
		scores[i] = sum * SimplexVolume(tri.Vertices(i))
	}
	worst := floats.MaxIdx(scores)
	vertices := tri.Simplices[worst]

	point, uniform, err := s.centroid(vertices, errs)
	if err != nil {
		return nil, err
	}

	next := make([][]float64, len(s.points), len(s.points)+1)
	copy(next, s.points)
	next = append(next, point)
	fresh, err := delaunay.Triangulate(columnsOf(next, s.dimMu))
	if err != nil {
		return nil, fmt.Errorf("sampling: triangulate %d points: %w", len(next), err)
	}
	s.points = next

	return &Selection{
		Point:         append([]float64(nil), point...),
		Simplex:       worst,
		Vertices:      append([]int(nil), vertices...),
		Scores:        scores,
		Errors:        errs,
		MaxError:      s.maxError,
		Uniform:       uniform,
		Triangulation: fresh,
	}, nil
}

// centroid computes Σ v_i e_i / Σ e_i over the simplex vertices.
func (s *Sampler) centroid(vertices []int, errs []float64) ([]float64, bool, error) {
	w := make([]float64, len(vertices))
	for k, v := range vertices {
		w[k] = errs[v]
	}
	total := floats.Sum(w)

	uniform := false
	if !(total > 0) {
		if s.policy == ZeroErrorFail {
			return nil, false, ErrZeroVertexErrors
		}
		for k := range w {
			w[k] = 1
		}
		total = float64(len(w))
		uniform = true
	}

	point := make([]float64, s.dimMu)
	for k, v := range vertices {
		floats.AddScaled(point, w[k], s.points[v])
	}
	for i := range point {
		point[i] /= total
	}
	return point, uniform, nil
}
