// Package snapshot turns parameter vectors into model outputs.
//
// An [Evaluator] is the expensive model of an adaptive study: given a
// parameter vector of length ParamDim it returns an output vector of
// length OutputDim. [SimulationEvaluator] integrates a [dynamo.System]
// and reports either one state component on the time grid (field output,
// with trapezoid quadrature weights) or a single [Metric] of the
// trajectory (scalar output). [FuncEvaluator] adapts a plain function.
package snapshot
