// Package delaunay builds Delaunay triangulations of point sets in any
// (small) dimension and interpolates piecewise-linearly over them.
//
// Points are the columns of a d×n matrix, matching the layout used by
// the sampling package:
//
//   - [Triangulate]: Bowyer–Watson insertion with a vertex at infinity
//   - [Triangulation.FindSimplex]: point location with barycentric coordinates
//   - [LinearInterpolator]: piecewise-linear interpolant over a triangulation
//
// # Example
//
//	pts := mat.NewDense(2, 4, []float64{
//	    0, 1, 0, 1,
//	    0, 0, 1, 1,
//	})
//	tri, err := delaunay.Triangulate(pts)
//	if err != nil {
//	    return err
//	}
//	for _, s := range tri.Simplices {
//	    fmt.Println(s)
//	}
//
// Duplicate input points are skipped during insertion and reported in
// [Triangulation.Coplanar].
package delaunay
