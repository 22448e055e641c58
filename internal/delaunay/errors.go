package delaunay

import "errors"

var (
	// ErrTooFewPoints indicates fewer than d+1 points in d dimensions.
	ErrTooFewPoints = errors.New("delaunay: too few points to form a simplex")

	// ErrDegenerate indicates the points do not span the full space
	// (collinear in 2D, coplanar in 3D, ...).
	ErrDegenerate = errors.New("delaunay: points are degenerate in full dimension")

	// ErrInvalidPoint indicates a NaN or Inf coordinate.
	ErrInvalidPoint = errors.New("delaunay: NaN or Inf coordinate")

	// ErrDimensionMismatch indicates a query point or value slice of the wrong length.
	ErrDimensionMismatch = errors.New("delaunay: dimension mismatch")
)
