package delaunay

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// Eps is the relative tolerance used for the rank, duplicate and
	// point-location tests.
	Eps = 1e-10

	// inSphereTol shrinks circumspheres slightly so that co-spherical
	// points (e.g. the corners of a square) do not invalidate each other.
	inSphereTol = 1e-12

	// infinite is the index of the vertex at infinity. Every hull facet
	// forms a cell with it.
	infinite = -1
)

// Triangulation is a Delaunay triangulation of a set of points.
type Triangulation struct {
	// Simplices holds d+1 point indices per simplex, sorted ascending.
	Simplices [][]int
	// Coplanar lists points that were not inserted because they
	// coincide with an earlier point.
	Coplanar []int

	dim        int
	coords     [][]float64
	transforms []*mat.Dense
}

// cell is a simplex of the triangulation. Hull cells contain the vertex
// at infinity; for them center and r2 describe the circumball of the
// finite facet within its hyperplane, and normal is the facet's outward
// unit normal.
type cell struct {
	v      []int
	center []float64
	r2     float64

	hull   bool
	origin []float64
	normal []float64
}

// conflicts reports whether inserting x destroys c. A finite cell
// conflicts when x lies inside its circumsphere; a hull cell when x lies
// beyond its facet, or on the facet's hyperplane inside its circumball.
func (c cell) conflicts(x []float64, planeTol float64) bool {
	if c.hull {
		side := 0.0
		for i, n := range c.normal {
			side += n * (x[i] - c.origin[i])
		}
		if side > planeTol {
			return true
		}
		if side < -planeTol {
			return false
		}
	} else if math.IsInf(c.r2, 1) {
		return true
	}
	return sqDist(c.center, x) < c.r2*(1-inSphereTol)
}

// Triangulate computes the Delaunay triangulation of the columns of
// points. It needs at least d+1 points spanning all d dimensions.
func Triangulate(points mat.Matrix) (*Triangulation, error) {
	d, n := points.Dims()
	if d == 0 || n < d+1 {
		return nil, ErrTooFewPoints
	}

	coords := make([][]float64, n)
	for j := 0; j < n; j++ {
		c := mat.Col(nil, j, points)
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, ErrInvalidPoint
			}
		}
		coords[j] = c
	}

	lo, hi := bounds(coords)
	span := 0.0
	for i := range lo {
		span = math.Max(span, hi[i]-lo[i])
	}
	tol := Eps * span

	root, ok := initialSimplex(coords, tol)
	if !ok {
		return nil, ErrDegenerate
	}
	interior := make([]float64, d)
	for _, v := range root {
		floats.Add(interior, coords[v])
	}
	floats.Scale(1/float64(len(root)), interior)

	cells := []cell{circumsphere(coords, root)}
	for k := range root {
		facet := make([]int, 0, d)
		facet = append(facet, root[:k]...)
		facet = append(facet, root[k+1:]...)
		cells = append(cells, hullCell(coords, facet, interior))
	}

	t := &Triangulation{dim: d}
	seeded := make(map[int]bool, len(root))
	for _, v := range root {
		seeded[v] = true
	}
	inserted := append(make([]int, 0, n), root...)
	for p := 0; p < n; p++ {
		if seeded[p] {
			continue
		}
		if isDuplicate(coords, inserted, p, tol) {
			t.Coplanar = append(t.Coplanar, p)
			continue
		}

		bad := make([]bool, len(cells))
		nbad := 0
		for i := range cells {
			if cells[i].conflicts(coords[p], tol) {
				bad[i] = true
				nbad++
			}
		}
		if nbad == 0 {
			t.Coplanar = append(t.Coplanar, p)
			continue
		}

		facets := cavityBoundary(cells, bad)
		next := make([]cell, 0, len(cells)-nbad+len(facets))
		for i := range cells {
			if !bad[i] {
				next = append(next, cells[i])
			}
		}
		for _, f := range facets {
			if f[0] == infinite {
				v := make([]int, 0, d)
				v = append(v, f[1:]...)
				v = append(v, p)
				next = append(next, hullCell(coords, v, interior))
				continue
			}
			v := make([]int, 0, d+1)
			v = append(v, f...)
			v = append(v, p)
			next = append(next, circumsphere(coords, v))
		}
		cells = next
		inserted = append(inserted, p)
	}

	volTol := Eps * math.Pow(span, float64(d))
	for _, c := range cells {
		if c.hull || measure(coords, c.v) <= volTol {
			continue
		}
		s := append([]int(nil), c.v...)
		sort.Ints(s)
		t.Simplices = append(t.Simplices, s)
	}
	if len(t.Simplices) == 0 {
		return nil, ErrDegenerate
	}

	t.coords = coords
	t.transforms = make([]*mat.Dense, len(t.Simplices))
	for i, s := range t.Simplices {
		t.transforms[i] = inverseEdges(t.coords, s)
	}
	return t, nil
}

// Dim returns the dimension of the triangulated space.
func (t *Triangulation) Dim() int { return t.dim }

// NumPoints returns the number of input points, including skipped ones.
func (t *Triangulation) NumPoints() int { return len(t.coords) }

// Point returns a copy of input point j.
func (t *Triangulation) Point(j int) []float64 {
	return append([]float64(nil), t.coords[j]...)
}

// Vertices returns the vertices of simplex i as the columns of a
// d×(d+1) matrix.
func (t *Triangulation) Vertices(i int) *mat.Dense {
	s := t.Simplices[i]
	m := mat.NewDense(t.dim, len(s), nil)
	for k, v := range s {
		m.SetCol(k, t.coords[v])
	}
	return m
}

// FindSimplex returns the index of a simplex containing p together with
// the barycentric coordinates of p in it. The index is -1 when p lies
// outside the convex hull.
func (t *Triangulation) FindSimplex(p []float64) (int, []float64) {
	if len(p) != t.dim {
		return -1, nil
	}
	for i := range t.Simplices {
		lam, ok := t.barycentric(i, p)
		if !ok {
			continue
		}
		inside := true
		for _, l := range lam {
			if l < -Eps {
				inside = false
				break
			}
		}
		if inside {
			return i, lam
		}
	}
	return -1, nil
}

func (t *Triangulation) barycentric(i int, p []float64) ([]float64, bool) {
	inv := t.transforms[i]
	if inv == nil {
		return nil, false
	}
	v0 := t.coords[t.Simplices[i][0]]
	diff := make([]float64, t.dim)
	floats.SubTo(diff, p, v0)

	var x mat.VecDense
	x.MulVec(inv, mat.NewVecDense(t.dim, diff))

	lam := make([]float64, t.dim+1)
	for k := 0; k < t.dim; k++ {
		lam[k+1] = x.AtVec(k)
	}
	lam[0] = 1 - floats.Sum(lam[1:])
	return lam, true
}

// circumsphere solves 2(v_i - v_0)·x = |v_i - v_0|² for the centre offset
// x. Singular simplices get an infinite radius so the next insertion
// always replaces them.
func circumsphere(coords [][]float64, v []int) cell {
	d := len(v) - 1
	v0 := coords[v[0]]
	a := mat.NewDense(d, d, nil)
	b := mat.NewVecDense(d, nil)
	edge := make([]float64, d)
	for i := 1; i <= d; i++ {
		floats.SubTo(edge, coords[v[i]], v0)
		for k, e := range edge {
			a.Set(i-1, k, 2*e)
		}
		b.SetVec(i-1, floats.Dot(edge, edge))
	}

	x, ok := solve(a, b)
	if !ok {
		return cell{v: v, r2: math.Inf(1)}
	}
	center := make([]float64, d)
	for k := range center {
		center[k] = v0[k] + x.AtVec(k)
	}
	return cell{v: v, center: center, r2: mat.Dot(x, x)}
}

func cavityBoundary(cells []cell, bad []bool) [][]int {
	type entry struct {
		facet []int
		count int
	}
	index := make(map[string]int)
	var entries []entry
	for i, c := range cells {
		if !bad[i] {
			continue
		}
		for k := range c.v {
			f := make([]int, 0, len(c.v)-1)
			for m, v := range c.v {
				if m != k {
					f = append(f, v)
				}
			}
			sort.Ints(f)
			key := facetKey(f)
			if idx, ok := index[key]; ok {
				entries[idx].count++
				continue
			}
			index[key] = len(entries)
			entries = append(entries, entry{facet: f, count: 1})
		}
	}

	boundary := make([][]int, 0, len(entries))
	for _, e := range entries {
		if e.count == 1 {
			boundary = append(boundary, e.facet)
		}
	}
	return boundary
}

func facetKey(f []int) string {
	var sb strings.Builder
	for i, v := range f {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// initialSimplex greedily picks d+1 affinely independent points, each
// one farthest from the affine hull of those already chosen. It fails
// when the points do not span d dimensions by more than tol.
func initialSimplex(coords [][]float64, tol float64) ([]int, bool) {
	d := len(coords[0])
	chosen := []int{0}
	basis := make([][]float64, 0, d)
	r := make([]float64, d)
	for len(chosen) < d+1 {
		best, bestNorm := -1, tol
		var bestDir []float64
		for j := 1; j < len(coords); j++ {
			floats.SubTo(r, coords[j], coords[0])
			for _, b := range basis {
				floats.AddScaled(r, -floats.Dot(r, b), b)
			}
			if norm := floats.Norm(r, 2); norm > bestNorm {
				best, bestNorm = j, norm
				bestDir = append(bestDir[:0], r...)
			}
		}
		if best < 0 {
			return nil, false
		}
		floats.Scale(1/bestNorm, bestDir)
		basis = append(basis, bestDir)
		chosen = append(chosen, best)
	}
	return chosen, true
}

// hullCell joins a hull facet to the vertex at infinity. The normal is
// the component of interior-origin orthogonal to the facet, negated so
// that it points out of the hull.
func hullCell(coords [][]float64, facet []int, interior []float64) cell {
	origin := coords[facet[0]]
	k := len(facet) - 1
	edges := make([][]float64, k)
	for i := range edges {
		edges[i] = make([]float64, len(origin))
		floats.SubTo(edges[i], coords[facet[i+1]], origin)
	}

	normal := make([]float64, len(origin))
	floats.SubTo(normal, interior, origin)
	center := append([]float64(nil), origin...)
	if k > 0 {
		gram := mat.NewDense(k, k, nil)
		toInterior := mat.NewVecDense(k, nil)
		halfSq := mat.NewVecDense(k, nil)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				gram.Set(i, j, floats.Dot(edges[i], edges[j]))
			}
			toInterior.SetVec(i, floats.Dot(edges[i], normal))
			halfSq.SetVec(i, floats.Dot(edges[i], edges[i])/2)
		}
		if lam, ok := solve(gram, toInterior); ok {
			for i := range edges {
				floats.AddScaled(normal, -lam.AtVec(i), edges[i])
			}
		}
		if mu, ok := solve(gram, halfSq); ok {
			for i := range edges {
				floats.AddScaled(center, mu.AtVec(i), edges[i])
			}
		}
	}
	if norm := floats.Norm(normal, 2); norm > 0 {
		floats.Scale(-1/norm, normal)
	}

	v := make([]int, 0, len(facet)+1)
	v = append(v, infinite)
	v = append(v, facet...)
	return cell{
		v:      v,
		center: center,
		r2:     sqDist(center, origin),
		hull:   true,
		origin: origin,
		normal: normal,
	}
}

// solve returns the solution of a·x = b, accepting ill-conditioned
// systems and rejecting singular ones.
func solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, bool) {
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, false
		}
	}
	return &x, true
}

func bounds(coords [][]float64) (lo, hi []float64) {
	lo = append([]float64(nil), coords[0]...)
	hi = append([]float64(nil), coords[0]...)
	for _, c := range coords[1:] {
		for i, v := range c {
			lo[i] = math.Min(lo[i], v)
			hi[i] = math.Max(hi[i], v)
		}
	}
	return lo, hi
}

func isDuplicate(coords [][]float64, inserted []int, p int, tol float64) bool {
	for _, q := range inserted {
		if floats.Distance(coords[p], coords[q], 2) <= tol {
			return true
		}
	}
	return false
}

func edgeMatrix(coords [][]float64, v []int) *mat.Dense {
	d := len(v) - 1
	e := mat.NewDense(d, d, nil)
	col := make([]float64, d)
	for k := 1; k <= d; k++ {
		floats.SubTo(col, coords[v[k]], coords[v[0]])
		e.SetCol(k-1, col)
	}
	return e
}

func measure(coords [][]float64, v []int) float64 {
	return math.Abs(mat.Det(edgeMatrix(coords, v)))
}

func inverseEdges(coords [][]float64, v []int) *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(edgeMatrix(coords, v)); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil
		}
	}
	return &inv
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		diff := a[i] - b[i]
		s += diff * diff
	}
	return s
}
