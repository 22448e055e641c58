package sampling

import "errors"

// Domain errors for sampler operations.
var (
	// ErrDimensionMismatch indicates points, snapshots, weights or a basis
	// with incompatible shapes.
	ErrDimensionMismatch = errors.New("sampling: dimension mismatch")

	// ErrTooFewSamples indicates fewer than two samples, which leaves
	// nothing to predict a withheld sample from.
	ErrTooFewSamples = errors.New("sampling: at least two samples are required")

	// ErrInvalidWeights indicates a non-positive or non-finite weight.
	ErrInvalidWeights = errors.New("sampling: weights must be positive and finite")

	// ErrZeroReference indicates the first snapshot has zero norm, so
	// relative errors are undefined.
	ErrZeroReference = errors.New("sampling: reference snapshot has zero norm")

	// ErrZeroVertexErrors indicates every vertex of the selected simplex
	// has zero leave-one-out error, so the weighted centroid is undefined.
	ErrZeroVertexErrors = errors.New("sampling: all vertex errors of the worst simplex are zero")

	// ErrPendingSample indicates a point added by AddNewPoint still waits
	// for its snapshot.
	ErrPendingSample = errors.New("sampling: a selected point is waiting for its snapshot")

	// ErrNoPendingSample indicates AppendSnapshot was called with no point
	// waiting for a snapshot.
	ErrNoPendingSample = errors.New("sampling: no point is waiting for a snapshot")
)
