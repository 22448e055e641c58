package sampling

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/adaptsim/internal/delaunay"
)

// cols builds a matrix whose columns are the given vectors.
func cols(vs ...[]float64) *mat.Dense {
	m := mat.NewDense(len(vs[0]), len(vs), nil)
	for j, v := range vs {
		m.SetCol(j, v)
	}
	return m
}

func row(vs ...float64) *mat.Dense {
	return mat.NewDense(1, len(vs), vs)
}

var _ = Describe("Sampler", func() {
	triangle := func() *mat.Dense {
		return cols([]float64{0, 0}, []float64{1, 0}, []float64{0, 1})
	}
	// Large triangle with one interior point at (1, 1).
	starred := func() *mat.Dense {
		return cols([]float64{0, 0}, []float64{4, 0}, []float64{0, 4}, []float64{1, 1})
	}

	Describe("New", func() {
		It("rejects mismatched point and snapshot counts", func() {
			_, err := New(triangle(), row(1, 2))
			Expect(err).To(MatchError(ErrDimensionMismatch))
		})

		It("needs at least two samples", func() {
			_, err := New(cols([]float64{0, 0}), row(1))
			Expect(err).To(MatchError(ErrTooFewSamples))
		})

		It("needs one output row in scalar mode", func() {
			_, err := New(triangle(), mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))
			Expect(err).To(MatchError(ErrDimensionMismatch))
		})

		It("validates weights", func() {
			snaps := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
			_, err := New(triangle(), snaps, WithWeights([]float64{1}))
			Expect(err).To(MatchError(ErrDimensionMismatch))
			_, err = New(triangle(), snaps, WithWeights([]float64{1, 0}))
			Expect(err).To(MatchError(ErrInvalidWeights))
			_, err = New(triangle(), snaps, WithWeights([]float64{1, math.Inf(1)}))
			Expect(err).To(MatchError(ErrInvalidWeights))
		})

		It("validates the carried basis", func() {
			snaps := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
			_, err := New(triangle(), snaps, WithWeights([]float64{1, 1}), WithBasis(mat.NewDense(3, 1, nil)))
			Expect(err).To(MatchError(ErrDimensionMismatch))

			s, err := New(triangle(), snaps, WithWeights([]float64{1, 1}), WithBasis(mat.NewDense(2, 1, []float64{1, 0})))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Basis().At(0, 0)).To(Equal(1.0))
		})

		It("reports a zero reference snapshot", func() {
			_, err := New(triangle(), row(0, 2, 5))
			Expect(err).To(MatchError(ErrZeroReference))

			snaps := mat.NewDense(2, 3, []float64{0, 2, 3, 0, 5, 6})
			_, err = New(triangle(), snaps, WithWeights([]float64{1, 1}))
			Expect(err).To(MatchError(ErrZeroReference))
		})

		It("computes the reference from the first snapshot", func() {
			s, err := New(triangle(), row(-4, 2, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.RelError()).To(Equal(4.0))
			Expect(s.Mode()).To(Equal(ModeScalar))

			snaps := mat.NewDense(2, 3, []float64{3, 2, 3, 4, 5, 6})
			s, err = New(triangle(), snaps, WithWeights([]float64{1, 0.5}))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.RelError()).To(BeNumerically("~", math.Sqrt(9+4), 1e-12))
			Expect(s.Mode()).To(Equal(ModeField))
			Expect(s.DimOut()).To(Equal(2))
			Expect(s.DimMu()).To(Equal(2))
		})
	})

	Describe("EstimateErrors in scalar mode", func() {
		It("falls back to the mean when the remaining points cannot be triangulated", func() {
			s, err := New(triangle(), row(1, 2, 5))
			Expect(err).NotTo(HaveOccurred())

			errs, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			Expect(errs).To(Equal([]float64{2.5, 1, 3.5}))
		})

		It("interpolates inside the hull and uses the mean outside", func() {
			s, err := New(starred(), row(1, 5, 9, 4.5))
			Expect(err).NotTo(HaveOccurred())

			errs, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			Expect(errs).To(HaveLen(4))
			Expect(errs[0]).To(BeNumerically("~", math.Abs(1-(5+9+4.5)/3), 1e-12))
			Expect(errs[1]).To(BeNumerically("~", math.Abs(5-(1+9+4.5)/3), 1e-12))
			Expect(errs[2]).To(BeNumerically("~", math.Abs(9-(1+5+4.5)/3), 1e-12))
			// 1 + x + 2y interpolates the corners; at (1, 1) it predicts 4.
			Expect(errs[3]).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("is pure", func() {
			s, err := New(starred(), row(1, 5, 9, 4.5))
			Expect(err).NotTo(HaveOccurred())

			first, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			second, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(s.Len()).To(Equal(4))
			_, ok := s.MaxError()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("EstimateErrors in field mode", func() {
		It("returns one non-negative error per sample", func() {
			snaps := mat.NewDense(3, 4, []float64{
				1, 2, 0.5, 1,
				0, 1, 2, 3,
				1, 0, 1, 2,
			})
			s, err := New(starred(), snaps, WithWeights([]float64{0.5, 1, 2}))
			Expect(err).NotTo(HaveOccurred())

			errs, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			Expect(errs).To(HaveLen(4))
			for _, e := range errs {
				Expect(e).To(BeNumerically(">=", 0))
				Expect(math.IsNaN(e)).To(BeFalse())
			}

			again, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(errs))
		})

		It("measures the part of the withheld snapshot outside the remaining span", func() {
			snaps := mat.NewDense(2, 4, []float64{
				1, 2, 3, 0,
				0, 0, 0, 1,
			})
			s, err := New(starred(), snaps, WithWeights([]float64{1, 1}))
			Expect(err).NotTo(HaveOccurred())

			errs, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			Expect(errs[3]).To(BeNumerically("~", 1, 1e-12))
			for _, e := range errs[:3] {
				Expect(e).To(BeNumerically("~", 0, 1e-12))
			}
		})
	})

	Describe("AddNewPoint", func() {
		It("appends the error-weighted centroid of the worst simplex", func() {
			s, err := New(triangle(), row(1, 2, 5))
			Expect(err).NotTo(HaveOccurred())
			before := s.Points()

			sel, err := s.AddNewPoint()
			Expect(err).NotTo(HaveOccurred())
			Expect(sel.Simplex).To(Equal(0))
			Expect(sel.Vertices).To(Equal([]int{0, 1, 2}))
			Expect(sel.Uniform).To(BeFalse())
			Expect(sel.Point[0]).To(BeNumerically("~", 1.0/7, 1e-15))
			Expect(sel.Point[1]).To(BeNumerically("~", 0.5, 1e-15))
			Expect(sel.Scores).To(HaveLen(1))
			Expect(sel.Scores[0]).To(BeNumerically("~", 7*0.5, 1e-12))

			Expect(s.Len()).To(Equal(4))
			Expect(s.Pending()).To(Equal(1))
			for j := 0; j < 3; j++ {
				Expect(s.Point(j)).To(Equal(mat.Col(nil, j, before)))
			}
			Expect(s.Point(3)).To(Equal(sel.Point))

			maxErr, ok := s.MaxError()
			Expect(ok).To(BeTrue())
			Expect(maxErr).To(Equal(3.5))
			Expect(sel.MaxError).To(Equal(3.5))

			Expect(sel.Triangulation.NumPoints()).To(Equal(4))
			Expect(sel.Triangulation.Simplices).To(HaveLen(3))
		})

		It("keeps points and snapshots in step", func() {
			s, err := New(triangle(), row(1, 2, 5))
			Expect(err).NotTo(HaveOccurred())
			_, err = s.AddNewPoint()
			Expect(err).NotTo(HaveOccurred())

			_, err = s.EstimateErrors()
			Expect(err).To(MatchError(ErrPendingSample))
			_, err = s.AddNewPoint()
			Expect(err).To(MatchError(ErrPendingSample))
			Expect(s.AppendSample([]float64{0.2, 0.2}, []float64{1})).To(MatchError(ErrPendingSample))

			Expect(s.AppendSnapshot([]float64{1, 2})).To(MatchError(ErrDimensionMismatch))
			Expect(s.AppendSnapshot([]float64{3})).To(Succeed())
			Expect(s.Pending()).To(Equal(0))
			Expect(s.AppendSnapshot([]float64{3})).To(MatchError(ErrNoPendingSample))

			_, c := s.Snapshots().Dims()
			Expect(c).To(Equal(4))

			sel, err := s.AddNewPoint()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(5))
			Expect(sel.Errors).To(HaveLen(4))
		})

		It("places the new point strictly inside the worst simplex in field mode", func() {
			// Each snapshot is orthogonal to the others, so withholding
			// sample j leaves a residual of exactly its own norm j+1.
			snaps := mat.NewDense(4, 4, []float64{
				1, 0, 0, 0,
				0, 2, 0, 0,
				0, 0, 3, 0,
				0, 0, 0, 4,
			})
			s, err := New(starred(), snaps, WithWeights([]float64{1, 1, 1, 1}))
			Expect(err).NotTo(HaveOccurred())
			pts := s.Points()

			sel, err := s.AddNewPoint()
			Expect(err).NotTo(HaveOccurred())
			for j, want := range []float64{1, 2, 3, 4} {
				Expect(sel.Errors[j]).To(BeNumerically("~", want, 1e-12))
			}
			// (2+3+4)·4 beats (1+2+4)·2 and (1+3+4)·2.
			Expect(sel.Vertices).To(Equal([]int{1, 2, 3}))
			Expect(sel.Uniform).To(BeFalse())
			Expect(sel.Point[0]).To(BeNumerically("~", 4.0/3, 1e-12))
			Expect(sel.Point[1]).To(BeNumerically("~", 16.0/9, 1e-12))

			for j := 0; j < 4; j++ {
				Expect(sel.Point).NotTo(Equal(mat.Col(nil, j, pts)))
			}
			Expect(sel.Triangulation.Coplanar).To(BeEmpty())
			Expect(sel.Triangulation.Simplices).To(HaveLen(5))

			local, err := delaunay.Triangulate(cols(
				mat.Col(nil, 1, pts),
				mat.Col(nil, 2, pts),
				mat.Col(nil, 3, pts),
			))
			Expect(err).NotTo(HaveOccurred())
			i, lam := local.FindSimplex(sel.Point)
			Expect(i).To(Equal(0))
			for k, want := range []float64{2.0 / 9, 3.0 / 9, 4.0 / 9} {
				Expect(lam[k]).To(BeNumerically(">", 0))
				Expect(lam[k]).To(BeNumerically("~", want, 1e-12))
			}
		})

		It("returns a convex combination of the worst simplex", func() {
			s, err := New(starred(), row(1, 5, 9, 4.5))
			Expect(err).NotTo(HaveOccurred())
			pts := s.Points()

			sel, err := s.AddNewPoint()
			Expect(err).NotTo(HaveOccurred())

			local, err := delaunay.Triangulate(cols(
				mat.Col(nil, sel.Vertices[0], pts),
				mat.Col(nil, sel.Vertices[1], pts),
				mat.Col(nil, sel.Vertices[2], pts),
			))
			Expect(err).NotTo(HaveOccurred())
			i, _ := local.FindSimplex(sel.Point)
			Expect(i).To(Equal(0))
		})

		It("uses the plain centroid when all vertex errors vanish", func() {
			s, err := New(triangle(), row(2, 2, 2))
			Expect(err).NotTo(HaveOccurred())

			sel, err := s.AddNewPoint()
			Expect(err).NotTo(HaveOccurred())
			Expect(sel.Uniform).To(BeTrue())
			Expect(sel.Point[0]).To(BeNumerically("~", 1.0/3, 1e-15))
			Expect(sel.Point[1]).To(BeNumerically("~", 1.0/3, 1e-15))
		})

		It("fails on vanishing vertex errors when asked to", func() {
			s, err := New(triangle(), row(2, 2, 2), WithZeroErrorPolicy(ZeroErrorFail))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.AddNewPoint()
			Expect(err).To(MatchError(ErrZeroVertexErrors))
			Expect(s.Len()).To(Equal(3))
			Expect(s.Pending()).To(Equal(0))
			maxErr, ok := s.MaxError()
			Expect(ok).To(BeTrue())
			Expect(maxErr).To(Equal(0.0))
		})

		It("propagates degenerate geometry", func() {
			s, err := New(cols([]float64{0, 0}, []float64{1, 1}, []float64{2, 2}), row(1, 2, 3))
			Expect(err).NotTo(HaveOccurred())

			errs, err := s.EstimateErrors()
			Expect(err).NotTo(HaveOccurred())
			Expect(errs).To(HaveLen(3))

			_, err = s.AddNewPoint()
			Expect(err).To(MatchError(delaunay.ErrDegenerate))
			Expect(s.Len()).To(Equal(3))
		})
	})

	Describe("AppendSample", func() {
		It("appends point and snapshot together", func() {
			s, err := New(triangle(), row(1, 2, 5))
			Expect(err).NotTo(HaveOccurred())

			Expect(s.AppendSample([]float64{1}, []float64{1})).To(MatchError(ErrDimensionMismatch))
			Expect(s.AppendSample([]float64{1, 1}, []float64{1, 2})).To(MatchError(ErrDimensionMismatch))
			Expect(s.AppendSample([]float64{1, 1}, []float64{4})).To(Succeed())
			Expect(s.Len()).To(Equal(4))
			Expect(s.Pending()).To(Equal(0))
		})
	})

	Describe("ComputeBasis", func() {
		It("stores the POD basis of the current snapshots", func() {
			snaps := mat.NewDense(3, 3, []float64{
				1, 0, 1,
				0, 1, 1,
				0, 0, 0,
			})
			s, err := New(triangle(), snaps, WithWeights([]float64{1, 2, 1}))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Basis()).To(BeNil())

			basis, err := s.ComputeBasis(0)
			Expect(err).NotTo(HaveOccurred())
			r, c := basis.Dims()
			Expect(r).To(Equal(3))
			Expect(c).To(Equal(2))
			Expect(s.Basis()).NotTo(BeNil())
			Expect(s.Weights()).To(Equal([]float64{1, 2, 1}))
		})
	})
})

var _ = Describe("ZeroErrorPolicy", func() {
	It("parses known names", func() {
		p, err := ParseZeroErrorPolicy("")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(ZeroErrorCentroid))

		p, err = ParseZeroErrorPolicy("fail")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.String()).To(Equal("fail"))

		_, err = ParseZeroErrorPolicy("ignore")
		Expect(err).To(HaveOccurred())
	})
})
