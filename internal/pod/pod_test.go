package pod

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"
)

func TestWeightedBasisOrthonormal(t *testing.T) {
	g := NewWithT(t)

	snaps := mat.NewDense(4, 3, []float64{
		1, 0, 2,
		2, 1, 0,
		0, 3, 1,
		1, 1, 1,
	})
	w := []float64{0.5, 1, 2, 0.25}

	basis, values, err := WeightedBasis(snaps, w, 0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(values).To(HaveLen(3))

	_, k := basis.Dims()
	g.Expect(k).To(Equal(3))

	var bw, gram mat.Dense
	bw.Mul(basis.T(), mat.NewDiagDense(len(w), w))
	gram.Mul(&bw, basis)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			g.Expect(gram.At(i, j)).To(BeNumerically("~", want, 1e-12))
		}
	}
}

func TestProjectReproducesSpan(t *testing.T) {
	g := NewWithT(t)

	snaps := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	w := []float64{1, 2, 3}
	basis, _, err := WeightedBasis(snaps, w, 0)
	g.Expect(err).NotTo(HaveOccurred())

	x := []float64{2, -1, 1}
	p := Project(basis, w, x)
	for i := range x {
		g.Expect(p[i]).To(BeNumerically("~", x[i], 1e-12))
	}
	g.Expect(Residual(basis, w, x)).To(BeNumerically("~", 0, 1e-12))

	g.Expect(Residual(basis, w, []float64{1, 1, -1})).To(BeNumerically(">", 0.1))
}

func TestWeightedBasisRank(t *testing.T) {
	g := NewWithT(t)

	rankOne := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		0, 0, 0,
	})
	basis, _, err := WeightedBasis(rankOne, []float64{1, 1}, 0)
	g.Expect(err).NotTo(HaveOccurred())
	_, k := basis.Dims()
	g.Expect(k).To(Equal(1))
	g.Expect(Residual(basis, []float64{1, 1}, []float64{0, 1})).To(BeNumerically("~", 1, 1e-12))

	full := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 2, 0,
		0, 0, 3,
	})
	basis, _, err = WeightedBasis(full, nil, 2)
	g.Expect(err).NotTo(HaveOccurred())
	_, k = basis.Dims()
	g.Expect(k).To(Equal(2))
}

func TestWeightedBasisZero(t *testing.T) {
	g := NewWithT(t)

	basis, values, err := WeightedBasis(mat.NewDense(2, 2, nil), nil, 0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(basis).To(BeNil())
	g.Expect(values).To(Equal([]float64{0, 0}))
	g.Expect(Project(nil, nil, []float64{1, 2})).To(Equal([]float64{0, 0}))
}

func TestWeightedBasisInvalidWeights(t *testing.T) {
	snaps := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	tests := []struct {
		name    string
		weights []float64
	}{
		{"short", []float64{1}},
		{"zero", []float64{1, 0}},
		{"negative", []float64{-1, 1}},
		{"nan", []float64{math.NaN(), 1}},
		{"inf", []float64{math.Inf(1), 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, _, err := WeightedBasis(snaps, tt.weights, 0)
			g.Expect(err).To(MatchError(ErrInvalidWeights))
		})
	}
}

func TestNorm(t *testing.T) {
	g := NewWithT(t)

	g.Expect(Norm(nil, []float64{3, 4})).To(BeNumerically("~", 5, 1e-15))
	g.Expect(Norm([]float64{1, 2}, []float64{3, 4})).To(BeNumerically("~", math.Sqrt(73), 1e-12))
}
