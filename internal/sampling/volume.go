package sampling

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SimplexVolume returns the volume of the N-simplex whose N+1 vertices
// are the columns of an N×(N+1) matrix: |det(v_1-v_0, ..., v_N-v_0)| / N!.
// A degenerate simplex has volume 0. It panics with mat.ErrShape when the
// matrix is not N×(N+1).
func SimplexVolume(vertices mat.Matrix) float64 {
	n, c := vertices.Dims()
	if c != n+1 {
		panic(mat.ErrShape)
	}

	edges := mat.NewDense(n, n, nil)
	for k := 1; k <= n; k++ {
		for i := 0; i < n; i++ {
			edges.Set(i, k-1, vertices.At(i, k)-vertices.At(i, 0))
		}
	}
	return math.Abs(mat.Det(edges)) / factorial(n)
}

func factorial(n int) float64 {
	f := 1.0
	for k := 2; k <= n; k++ {
		f *= float64(k)
	}
	return f
}
