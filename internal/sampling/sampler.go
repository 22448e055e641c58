package sampling

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/adaptsim/internal/pod"
)

// ZeroErrorPolicy decides what AddNewPoint does when every vertex of the
// worst simplex has zero leave-one-out error.
type ZeroErrorPolicy int

const (
	// ZeroErrorCentroid uses the unweighted centroid of the simplex and
	// flags the selection as Uniform.
	ZeroErrorCentroid ZeroErrorPolicy = iota
	// ZeroErrorFail returns ErrZeroVertexErrors and leaves the points
	// unchanged.
	ZeroErrorFail
)

func (p ZeroErrorPolicy) String() string {
	switch p {
	case ZeroErrorCentroid:
		return "centroid"
	case ZeroErrorFail:
		return "fail"
	default:
		return fmt.Sprintf("ZeroErrorPolicy(%d)", int(p))
	}
}

// ParseZeroErrorPolicy maps "centroid" or "fail" to a policy. The empty
// string selects ZeroErrorCentroid.
func ParseZeroErrorPolicy(s string) (ZeroErrorPolicy, error) {
	switch s {
	case "", "centroid":
		return ZeroErrorCentroid, nil
	case "fail":
		return ZeroErrorFail, nil
	default:
		return 0, fmt.Errorf("unknown zero error policy: %s", s)
	}
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithWeights selects field mode with one weight per output component,
// typically the cell volumes of the discretization.
func WithWeights(w []float64) Option {
	return func(s *Sampler) {
		s.weights = append([]float64(nil), w...)
	}
}

// WithBasis attaches a precomputed POD basis (dim_out × k). The sampler
// carries it but the leave-one-out estimate always builds its own.
func WithBasis(b mat.Matrix) Option {
	return func(s *Sampler) {
		s.basis = mat.DenseCopyOf(b)
	}
}

// WithZeroErrorPolicy overrides ZeroErrorCentroid.
func WithZeroErrorPolicy(p ZeroErrorPolicy) Option {
	return func(s *Sampler) {
		s.policy = p
	}
}

// Sampler is the adaptive sampling state: parameter points, their
// snapshots and the running maximum of the leave-one-out error.
type Sampler struct {
	points    [][]float64
	snapshots [][]float64
	basis     *mat.Dense
	weights   []float64
	estimator Estimator
	policy    ZeroErrorPolicy

	dimMu    int
	dimOut   int
	relError float64
	maxError float64
	hasMax   bool
}

// New builds a sampler from a dim_mu × n matrix of parameter points and
// the dim_out × n matrix of their snapshots. Scalar mode (no weights)
// requires dim_out == 1.
func New(points, snapshots mat.Matrix, opts ...Option) (*Sampler, error) {
	dimMu, n := points.Dims()
	dimOut, m := snapshots.Dims()
	if n != m {
		return nil, fmt.Errorf("%w: %d points, %d snapshots", ErrDimensionMismatch, n, m)
	}
	if n < 2 {
		return nil, ErrTooFewSamples
	}

	s := &Sampler{
		points:    make([][]float64, n),
		snapshots: make([][]float64, n),
		dimMu:     dimMu,
		dimOut:    dimOut,
	}
	for j := 0; j < n; j++ {
		s.points[j] = mat.Col(nil, j, points)
		s.snapshots[j] = mat.Col(nil, j, snapshots)
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.weights != nil {
		if len(s.weights) != dimOut {
			return nil, fmt.Errorf("%w: %d weights for %d outputs", ErrDimensionMismatch, len(s.weights), dimOut)
		}
		for _, w := range s.weights {
			if !(w > 0) || math.IsInf(w, 0) {
				return nil, ErrInvalidWeights
			}
		}
		s.estimator = fieldEstimator{weights: s.weights}
	} else {
		if dimOut != 1 {
			return nil, fmt.Errorf("%w: scalar mode needs one output row, got %d", ErrDimensionMismatch, dimOut)
		}
		s.estimator = scalarEstimator{}
	}

	if s.basis != nil {
		if r, _ := s.basis.Dims(); r != dimOut {
			return nil, fmt.Errorf("%w: basis has %d rows for %d outputs", ErrDimensionMismatch, r, dimOut)
		}
	}

	s.relError = s.estimator.Reference(s.snapshots[0])
	if s.relError == 0 || math.IsNaN(s.relError) {
		return nil, ErrZeroReference
	}
	return s, nil
}

// EstimateErrors returns one leave-one-out error per sample, relative to
// the reference magnitude of the first snapshot. It does not modify the
// sampler.
func (s *Sampler) EstimateErrors() ([]float64, error) {
	if s.Pending() > 0 {
		return nil, ErrPendingSample
	}
	errs, err := s.estimator.LeaveOneOut(s.points, s.snapshots)
	if err != nil {
		return nil, err
	}
	for i := range errs {
		errs[i] /= s.relError
	}
	return errs, nil
}

// AppendSample adds a parameter point together with its snapshot.
func (s *Sampler) AppendSample(point, snapshot []float64) error {
	if s.Pending() > 0 {
		return ErrPendingSample
	}
	if len(point) != s.dimMu {
		return fmt.Errorf("%w: point has %d components, want %d", ErrDimensionMismatch, len(point), s.dimMu)
	}
	if len(snapshot) != s.dimOut {
		return fmt.Errorf("%w: snapshot has %d components, want %d", ErrDimensionMismatch, len(snapshot), s.dimOut)
	}
	s.points = append(s.points, append([]float64(nil), point...))
	s.snapshots = append(s.snapshots, append([]float64(nil), snapshot...))
	return nil
}

// AppendSnapshot attaches the snapshot of the point selected by the last
// AddNewPoint call.
func (s *Sampler) AppendSnapshot(snapshot []float64) error {
	if s.Pending() != 1 {
		return ErrNoPendingSample
	}
	if len(snapshot) != s.dimOut {
		return fmt.Errorf("%w: snapshot has %d components, want %d", ErrDimensionMismatch, len(snapshot), s.dimOut)
	}
	s.snapshots = append(s.snapshots, append([]float64(nil), snapshot...))
	return nil
}

// ComputeBasis replaces the carried basis with the POD basis of all
// current snapshots, truncated to rank modes when rank > 0.
func (s *Sampler) ComputeBasis(rank int) (*mat.Dense, error) {
	basis, _, err := pod.WeightedBasis(columnsOf(s.snapshots, s.dimOut), s.weights, rank)
	if err != nil {
		return nil, err
	}
	s.basis = basis
	return s.Basis(), nil
}

// Points returns a copy of the parameter points as a dim_mu × n matrix.
func (s *Sampler) Points() *mat.Dense { return columnsOf(s.points, s.dimMu) }

// Point returns a copy of parameter point j.
func (s *Sampler) Point(j int) []float64 { return append([]float64(nil), s.points[j]...) }

// Snapshots returns a copy of the snapshot matrix.
func (s *Sampler) Snapshots() *mat.Dense { return columnsOf(s.snapshots, s.dimOut) }

// Basis returns a copy of the carried POD basis, or nil.
func (s *Sampler) Basis() *mat.Dense {
	if s.basis == nil {
		return nil
	}
	return mat.DenseCopyOf(s.basis)
}

// Weights returns a copy of the output weights, nil in scalar mode.
func (s *Sampler) Weights() []float64 {
	if s.weights == nil {
		return nil
	}
	return append([]float64(nil), s.weights...)
}

// Mode reports whether errors are estimated on fields or scalars.
func (s *Sampler) Mode() Mode { return s.estimator.Mode() }

// Policy returns the zero vertex error policy.
func (s *Sampler) Policy() ZeroErrorPolicy { return s.policy }

// RelError returns the reference magnitude of the first snapshot.
func (s *Sampler) RelError() float64 { return s.relError }

// DimMu returns the number of parameters per point.
func (s *Sampler) DimMu() int { return s.dimMu }

// DimOut returns the number of output components per snapshot.
func (s *Sampler) DimOut() int { return s.dimOut }

// Len returns the number of parameter points, including a pending one.
func (s *Sampler) Len() int { return len(s.points) }

// Pending returns the number of points still waiting for a snapshot.
func (s *Sampler) Pending() int { return len(s.points) - len(s.snapshots) }

// MaxError returns the largest leave-one-out error of the last
// AddNewPoint round. The second result is false until a round has run.
func (s *Sampler) MaxError() (float64, bool) { return s.maxError, s.hasMax }

func columnsOf(cols [][]float64, rows int) *mat.Dense {
	m := mat.NewDense(rows, len(cols), nil)
	for j, c := range cols {
		m.SetCol(j, c)
	}
	return m
}
