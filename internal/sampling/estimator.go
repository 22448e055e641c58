package sampling

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/adaptsim/internal/delaunay"
	"github.com/san-kum/adaptsim/internal/pod"
)

// Mode identifies the leave-one-out strategy of a sampler.
type Mode int

const (
	// ModeScalar predicts a withheld scalar output by linear interpolation.
	ModeScalar Mode = iota
	// ModeField predicts a withheld field by POD projection.
	ModeField
)

func (m Mode) String() string {
	if m == ModeField {
		return "field"
	}
	return "scalar"
}

// Estimator computes absolute leave-one-out errors for one mode.
type Estimator interface {
	Mode() Mode
	// Reference returns the magnitude errors are made relative to.
	Reference(snapshot []float64) float64
	// LeaveOneOut returns, for every sample j, the error of predicting
	// snapshot j from all other samples.
	LeaveOneOut(points, snapshots [][]float64) ([]float64, error)
}

type fieldEstimator struct {
	weights []float64
}

func (fieldEstimator) Mode() Mode { return ModeField }

func (f fieldEstimator) Reference(snapshot []float64) float64 {
	return pod.Norm(f.weights, snapshot)
}

func (f fieldEstimator) LeaveOneOut(_, snapshots [][]float64) ([]float64, error) {
	n := len(snapshots)
	dimOut := len(snapshots[0])
	errs := make([]float64, n)

	remaining := mat.NewDense(dimOut, n-1, nil)
	for j := 0; j < n; j++ {
		col := 0
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			remaining.SetCol(col, snapshots[k])
			col++
		}
		basis, _, err := pod.WeightedBasis(remaining, f.weights, 0)
		if err != nil {
			return nil, err
		}
		errs[j] = pod.Residual(basis, f.weights, snapshots[j])
	}
	return errs, nil
}

type scalarEstimator struct{}

func (scalarEstimator) Mode() Mode { return ModeScalar }

func (scalarEstimator) Reference(snapshot []float64) float64 {
	return math.Abs(snapshot[0])
}

func (scalarEstimator) LeaveOneOut(points, snapshots [][]float64) ([]float64, error) {
	n := len(points)
	dimMu := len(points[0])
	errs := make([]float64, n)

	remaining := mat.NewDense(dimMu, n-1, nil)
	values := make([]float64, n-1)
	for j := 0; j < n; j++ {
		col := 0
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			remaining.SetCol(col, points[k])
			values[col] = snapshots[k][0]
			col++
		}

		predicted, ok := 0.0, false
		li, err := delaunay.NewLinearInterpolator(remaining, values)
		switch {
		case err == nil:
			predicted, ok = li.Eval(points[j])
		case errors.Is(err, delaunay.ErrTooFewPoints), errors.Is(err, delaunay.ErrDegenerate):
		default:
			return nil, err
		}
		if !ok {
			predicted = stat.Mean(values, nil)
		}
		errs[j] = math.Abs(snapshots[j][0] - predicted)
	}
	return errs, nil
}
