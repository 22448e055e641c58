package experiment

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/adaptsim/internal/sampling"
	"github.com/san-kum/adaptsim/internal/snapshot"
)

// Study is an adaptive sampling run: evaluate an initial design, then add
// one error-driven point per round until the leave-one-out error drops to
// Tol or MaxRounds is reached.
type Study struct {
	Model     string
	Evaluator snapshot.Evaluator
	Bounds    []Bound
	// Levels sets the initial full-factorial grid when Initial is nil.
	Levels  int
	Initial *mat.Dense

	// Tol stops the study once a round's maximum error is at most Tol.
	// Zero disables the test.
	Tol       float64
	MaxRounds int
	Policy    sampling.ZeroErrorPolicy

	// OnRound, when set, is called after every completed round.
	OnRound func(Round)
}

// Round records one AddNewPoint round.
type Round struct {
	Index    int
	MaxError float64
	Point    []float64
	Simplex  []int
	Uniform  bool
}

// Report is the outcome of a study.
type Report struct {
	Model     string
	Params    []string
	Mode      sampling.Mode
	Initial   int
	Rounds    []Round
	Converged bool
	// Errors are the leave-one-out errors over the final sample set.
	Errors    []float64
	Points    *mat.Dense
	Snapshots *mat.Dense
}

// RoundError wraps a failure inside a sampling round.
type RoundError struct {
	Round   int
	Point   []float64
	Wrapped error
}

func (e *RoundError) Error() string {
	if e.Point != nil {
		return fmt.Sprintf("round %d at %v: %v", e.Round, e.Point, e.Wrapped)
	}
	return fmt.Sprintf("round %d: %v", e.Round, e.Wrapped)
}

func (e *RoundError) Unwrap() error {
	return e.Wrapped
}

// Run executes the study. On a round failure the report so far is
// returned together with a *RoundError.
func (s *Study) Run(ctx context.Context) (*Report, error) {
	design := s.Initial
	if design == nil {
		var err error
		design, err = Grid(s.Bounds, s.Levels)
		if err != nil {
			return nil, err
		}
	}
	dimMu, n := design.Dims()
	if dimMu != s.Evaluator.ParamDim() {
		return nil, fmt.Errorf("experiment: design has %d parameters, evaluator wants %d", dimMu, s.Evaluator.ParamDim())
	}

	snaps := mat.NewDense(s.Evaluator.OutputDim(), n, nil)
	for j := 0; j < n; j++ {
		out, err := s.Evaluator.Evaluate(ctx, mat.Col(nil, j, design))
		if err != nil {
			return nil, fmt.Errorf("experiment: initial sample %d: %w", j, err)
		}
		snaps.SetCol(j, out)
	}

	opts := []sampling.Option{sampling.WithZeroErrorPolicy(s.Policy)}
	if w, ok := s.Evaluator.(snapshot.Weighted); ok && w.Weights() != nil {
		opts = append(opts, sampling.WithWeights(w.Weights()))
	}
	sampler, err := sampling.New(design, snaps, opts...)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Model:   s.Model,
		Params:  s.paramNames(dimMu),
		Mode:    sampler.Mode(),
		Initial: n,
	}
	defer func() {
		report.Points = sampler.Points()
		report.Snapshots = sampler.Snapshots()
	}()

	for i := 1; i <= s.MaxRounds; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		sel, err := sampler.AddNewPoint()
		if err != nil {
			return report, &RoundError{Round: i, Wrapped: err}
		}
		out, err := s.Evaluator.Evaluate(ctx, sel.Point)
		if err != nil {
			return report, &RoundError{Round: i, Point: sel.Point, Wrapped: err}
		}
		if err := sampler.AppendSnapshot(out); err != nil {
			return report, &RoundError{Round: i, Point: sel.Point, Wrapped: err}
		}

		r := Round{
			Index:    i,
			MaxError: sel.MaxError,
			Point:    sel.Point,
			Simplex:  sel.Vertices,
			Uniform:  sel.Uniform,
		}
		report.Rounds = append(report.Rounds, r)
		if s.OnRound != nil {
			s.OnRound(r)
		}

		if s.Tol > 0 && sel.MaxError <= s.Tol {
			report.Converged = true
			break
		}
	}

	report.Errors, err = sampler.EstimateErrors()
	if err != nil {
		return report, err
	}
	return report, nil
}

func (s *Study) paramNames(dim int) []string {
	names := make([]string, dim)
	for i := range names {
		if i < len(s.Bounds) && s.Bounds[i].Name != "" {
			names[i] = s.Bounds[i].Name
		} else {
			names[i] = fmt.Sprintf("mu%d", i)
		}
	}
	return names
}
