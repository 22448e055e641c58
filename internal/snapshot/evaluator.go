package snapshot

import (
	"context"
	"fmt"
)

// Evaluator is the expensive model: one output vector per parameter
// vector.
type Evaluator interface {
	Evaluate(ctx context.Context, mu []float64) ([]float64, error)
	ParamDim() int
	OutputDim() int
}

// Weighted is implemented by evaluators whose outputs are fields with
// quadrature weights, one per output component.
type Weighted interface {
	Weights() []float64
}

// FuncEvaluator adapts a plain function to Evaluator.
type FuncEvaluator struct {
	Params  int
	Outputs int
	Fn      func(mu []float64) ([]float64, error)
	// W, when set, is returned by Weights.
	W []float64
}

func (f *FuncEvaluator) ParamDim() int  { return f.Params }
func (f *FuncEvaluator) OutputDim() int { return f.Outputs }

func (f *FuncEvaluator) Weights() []float64 {
	if f.W == nil {
		return nil
	}
	return append([]float64(nil), f.W...)
}

func (f *FuncEvaluator) Evaluate(ctx context.Context, mu []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(mu) != f.Params {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrParamDim, len(mu), f.Params)
	}
	out, err := f.Fn(mu)
	if err != nil {
		return nil, err
	}
	if len(out) != f.Outputs {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrOutputDim, len(out), f.Outputs)
	}
	return out, nil
}
