package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/adaptsim/internal/config"
	"github.com/san-kum/adaptsim/internal/sampling"
	"github.com/san-kum/adaptsim/internal/snapshot"
)

func bowl() *snapshot.FuncEvaluator {
	return &snapshot.FuncEvaluator{
		Params:  2,
		Outputs: 1,
		Fn: func(mu []float64) ([]float64, error) {
			return []float64{1 + mu[0]*mu[0] + mu[1]*mu[1]}, nil
		},
	}
}

func unitSquare() []Bound {
	return []Bound{{"x", 0, 1}, {"y", 0, 1}}
}

func TestStudyScalar(t *testing.T) {
	g := NewWithT(t)

	var seen []Round
	s := &Study{
		Model:     "bowl",
		Evaluator: bowl(),
		Bounds:    unitSquare(),
		Levels:    3,
		MaxRounds: 4,
		OnRound:   func(r Round) { seen = append(seen, r) },
	}
	rep, err := s.Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(rep.Mode).To(Equal(sampling.ModeScalar))
	g.Expect(rep.Initial).To(Equal(9))
	g.Expect(rep.Params).To(Equal([]string{"x", "y"}))
	g.Expect(rep.Rounds).To(HaveLen(4))
	g.Expect(seen).To(Equal(rep.Rounds))
	g.Expect(rep.Converged).To(BeFalse())
	g.Expect(rep.Errors).To(HaveLen(13))

	_, c := rep.Points.Dims()
	g.Expect(c).To(Equal(13))
	_, c = rep.Snapshots.Dims()
	g.Expect(c).To(Equal(13))

	for i, r := range rep.Rounds {
		g.Expect(r.Index).To(Equal(i + 1))
		g.Expect(r.MaxError).To(BeNumerically(">", 0))
		g.Expect(r.Point[0]).To(BeNumerically(">=", 0))
		g.Expect(r.Point[0]).To(BeNumerically("<=", 1))
		g.Expect(r.Point[1]).To(BeNumerically(">=", 0))
		g.Expect(r.Point[1]).To(BeNumerically("<=", 1))
		g.Expect(mat.Col(nil, 9+i, rep.Points)).To(Equal(r.Point))
	}
}

func TestStudyField(t *testing.T) {
	g := NewWithT(t)

	w := make([]float64, 8)
	for k := range w {
		w[k] = 1 / float64(k+1)
	}
	eval := &snapshot.FuncEvaluator{
		Params:  2,
		Outputs: 8,
		W:       w,
		Fn: func(mu []float64) ([]float64, error) {
			out := make([]float64, 8)
			for k := range out {
				out[k] = math.Exp(-float64(k+1)*mu[0]) * (1 + float64(k)*mu[1]*mu[1])
			}
			return out, nil
		},
	}
	s := &Study{Evaluator: eval, Bounds: unitSquare(), Levels: 2, MaxRounds: 3}
	rep, err := s.Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rep.Mode).To(Equal(sampling.ModeField))
	g.Expect(rep.Initial).To(Equal(4))
	g.Expect(rep.Rounds).To(HaveLen(3))

	r, c := rep.Snapshots.Dims()
	g.Expect(r).To(Equal(8))
	g.Expect(c).To(Equal(7))
}

func TestStudyConverges(t *testing.T) {
	g := NewWithT(t)

	s := &Study{Evaluator: bowl(), Bounds: unitSquare(), Levels: 3, MaxRounds: 10, Tol: 1e9}
	rep, err := s.Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rep.Converged).To(BeTrue())
	g.Expect(rep.Rounds).To(HaveLen(1))
}

func TestStudyInitialDesign(t *testing.T) {
	g := NewWithT(t)

	initial := mat.NewDense(2, 3, []float64{
		0, 1, 0,
		0, 0, 1,
	})
	s := &Study{Evaluator: bowl(), Initial: initial, MaxRounds: 1}
	rep, err := s.Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rep.Initial).To(Equal(3))
	g.Expect(rep.Params).To(Equal([]string{"mu0", "mu1"}))
	g.Expect(rep.Rounds[0].Simplex).To(Equal([]int{0, 1, 2}))

	s.Initial = mat.NewDense(3, 4, nil)
	_, err = s.Run(context.Background())
	g.Expect(err).To(HaveOccurred())
}

func TestStudyEvaluatorFailure(t *testing.T) {
	g := NewWithT(t)

	calls := 0
	eval := bowl()
	inner := eval.Fn
	eval.Fn = func(mu []float64) ([]float64, error) {
		calls++
		if calls > 9 {
			return nil, errors.New("solver diverged")
		}
		return inner(mu)
	}

	s := &Study{Evaluator: eval, Bounds: unitSquare(), Levels: 3, MaxRounds: 5}
	rep, err := s.Run(context.Background())

	var roundErr *RoundError
	g.Expect(errors.As(err, &roundErr)).To(BeTrue())
	g.Expect(roundErr.Round).To(Equal(1))
	g.Expect(roundErr.Point).To(HaveLen(2))
	g.Expect(err.Error()).To(ContainSubstring("solver diverged"))
	g.Expect(rep).NotTo(BeNil())
	g.Expect(rep.Rounds).To(BeEmpty())
}

func TestStudyCanceled(t *testing.T) {
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Study{
		Evaluator: bowl(),
		Bounds:    unitSquare(),
		Levels:    3,
		MaxRounds: 10,
		OnRound:   func(Round) { cancel() },
	}
	rep, err := s.Run(ctx)
	g.Expect(err).To(MatchError(context.Canceled))
	g.Expect(rep.Rounds).To(HaveLen(1))
	_, c := rep.Points.Dims()
	g.Expect(c).To(Equal(10))
}

func TestNewStudyFromPreset(t *testing.T) {
	g := NewWithT(t)

	cfg := config.GetPreset("vanderpol", "mu")
	cfg.Duration = 2
	cfg.Sampling.MaxRounds = 2
	cfg.Sampling.Tolerance = 0

	s, err := NewStudy(cfg, NewRegistry())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Evaluator.ParamDim()).To(Equal(1))
	g.Expect(s.Evaluator.OutputDim()).To(Equal(201))

	rep, err := s.Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rep.Model).To(Equal("vanderpol"))
	g.Expect(rep.Mode).To(Equal(sampling.ModeField))
	g.Expect(rep.Rounds).To(HaveLen(2))
	for _, r := range rep.Rounds {
		g.Expect(r.Point[0]).To(BeNumerically(">=", 0.5))
		g.Expect(r.Point[0]).To(BeNumerically("<=", 3.0))
	}
}

func TestNewStudyErrors(t *testing.T) {
	g := NewWithT(t)
	reg := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Model = "lorenz"
	_, err := NewStudy(cfg, reg)
	g.Expect(err).To(HaveOccurred())

	cfg = config.DefaultConfig()
	cfg.Params[0].Name = "spin"
	_, err = NewStudy(cfg, reg)
	g.Expect(err).To(HaveOccurred())

	cfg = config.DefaultConfig()
	cfg.Sampling.Levels = 1
	_, err = NewStudy(cfg, reg)
	g.Expect(err).To(MatchError(config.ErrInvalid))
}
