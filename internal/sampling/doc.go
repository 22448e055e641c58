// Package sampling implements adaptive parameter-space sampling for
// reduced-order models.
//
// A [Sampler] holds parameter points and their output snapshots. Each
// round it estimates a leave-one-out error per point, triangulates the
// points and proposes the error-weighted centroid of the simplex with
// the largest (summed vertex error × volume) score:
//
//   - [Sampler.EstimateErrors]: leave-one-out errors relative to the first snapshot
//   - [SimplexVolume]: N-dimensional simplex volume
//   - [Sampler.AddNewPoint]: select and append the next parameter point
//   - [Sampler.AppendSnapshot]: attach the evaluated output of that point
//
// The leave-one-out strategy is fixed at construction. With weights the
// sampler runs in field mode (POD projection under the weighted inner
// product); without weights it runs in scalar mode (piecewise-linear
// interpolation over the Delaunay triangulation, falling back to the mean
// of the remaining outputs outside the convex hull).
//
// # Example
//
//	s, err := sampling.New(points, snapshots, sampling.WithWeights(cellVolumes))
//	if err != nil {
//	    return err
//	}
//	for round := 0; round < maxRounds; round++ {
//	    sel, err := s.AddNewPoint()
//	    if err != nil {
//	        return err
//	    }
//	    out, err := model.Evaluate(ctx, sel.Point)
//	    if err != nil {
//	        return err
//	    }
//	    if err := s.AppendSnapshot(out); err != nil {
//	        return err
//	    }
//	    if sel.MaxError <= tol {
//	        break
//	    }
//	}
//
// # Thread Safety
//
// A Sampler is NOT safe for concurrent use. AddNewPoint leaves the point
// set one column ahead of the snapshots until AppendSnapshot is called;
// callers must serialize access.
package sampling
