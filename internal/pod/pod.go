// Package pod extracts proper orthogonal decomposition bases from
// snapshot matrices under a diagonal (weighted) inner product.
//
// With weights w the inner product is <x, y>_w = Σ x_i w_i y_i. The basis
// is obtained from the thin SVD of diag(√w)·S and rescaled by diag(1/√w),
// so its columns are orthonormal in <·,·>_w. A nil weight vector means the
// plain Euclidean inner product.
package pod

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidWeights indicates weights of the wrong length or a
	// non-positive weight.
	ErrInvalidWeights = errors.New("pod: weights must be positive, one per row")

	// ErrFactorization indicates the SVD did not converge.
	ErrFactorization = errors.New("pod: singular value decomposition failed")
)

// WeightedBasis returns the POD basis of the columns of snapshots together
// with all singular values in descending order. The basis keeps the
// numerically non-zero modes, capped at rank when rank > 0. A nil basis is
// returned when every snapshot is zero.
func WeightedBasis(snapshots mat.Matrix, weights []float64, rank int) (*mat.Dense, []float64, error) {
	r, c := snapshots.Dims()
	if err := checkWeights(weights, r); err != nil {
		return nil, nil, err
	}

	scaled := mat.DenseCopyOf(snapshots)
	if weights != nil {
		for i, w := range weights {
			row := scaled.RawRowView(i)
			floats.Scale(math.Sqrt(w), row)
		}
	}

	var svd mat.SVD
	if !svd.Factorize(scaled, mat.SVDThin) {
		return nil, nil, ErrFactorization
	}
	values := svd.Values(nil)

	k := numericalRank(values, r, c)
	if rank > 0 && rank < k {
		k = rank
	}
	if k == 0 {
		return nil, values, nil
	}

	var u mat.Dense
	svd.UTo(&u)
	basis := mat.DenseCopyOf(u.Slice(0, r, 0, k))
	if weights != nil {
		for i, w := range weights {
			floats.Scale(1/math.Sqrt(w), basis.RawRowView(i))
		}
	}
	return basis, values, nil
}

// Project returns the w-orthogonal projection of x onto the span of the
// basis columns, Σ_k <x, b_k>_w b_k. A nil basis projects to zero.
func Project(basis *mat.Dense, weights, x []float64) []float64 {
	out := make([]float64, len(x))
	if basis == nil {
		return out
	}
	xw := append([]float64(nil), x...)
	if weights != nil {
		floats.Mul(xw, weights)
	}

	var coef mat.VecDense
	coef.MulVec(basis.T(), mat.NewVecDense(len(xw), xw))
	var p mat.VecDense
	p.MulVec(basis, &coef)
	return mat.Col(out, 0, &p)
}

// Norm returns ||x ∘ w||_2, the weighted norm used for reconstruction
// errors. Nil weights give the Euclidean norm.
func Norm(weights, x []float64) float64 {
	if weights == nil {
		return floats.Norm(x, 2)
	}
	tmp := make([]float64, len(x))
	floats.MulTo(tmp, x, weights)
	return floats.Norm(tmp, 2)
}

// Residual returns Norm(weights, x - Project(basis, weights, x)).
func Residual(basis *mat.Dense, weights, x []float64) float64 {
	diff := make([]float64, len(x))
	floats.SubTo(diff, x, Project(basis, weights, x))
	return Norm(weights, diff)
}

func checkWeights(weights []float64, rows int) error {
	if weights == nil {
		return nil
	}
	if len(weights) != rows {
		return ErrInvalidWeights
	}
	for _, w := range weights {
		if !(w > 0) || math.IsInf(w, 0) {
			return ErrInvalidWeights
		}
	}
	return nil
}

// numericalRank counts singular values above max(r, c)·ε·σ_max.
func numericalRank(values []float64, r, c int) int {
	if len(values) == 0 || values[0] == 0 {
		return 0
	}
	tol := float64(max(r, c)) * 0x1p-52 * values[0]
	k := 0
	for _, v := range values {
		if v > tol {
			k++
		}
	}
	return k
}
