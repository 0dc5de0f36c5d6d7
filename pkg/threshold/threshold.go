// Package threshold converts dense weighted adjacency matrices into binary
// directed graphs by keeping only the highest-weight edges.
package threshold

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/errs"
)

// Cutoff returns the weight threshold for a target average degree: the
// (k+1)-th largest entry of w where k = floor(N*degree). Exactly k entries
// exceed it unless weights tie at the cutoff.
func Cutoff(w mat.Matrix, degree float64) (float64, error) {
	n, err := order(w)
	if err != nil {
		return 0, err
	}
	if !(degree > 0) || math.IsInf(degree, 0) {
		return 0, errs.InvalidConfiguration("threshold", "degree must be positive, got %v", degree)
	}

	weights := flatten(w, n)
	sort.Float64s(weights)

	// Compare in floating point so huge degrees cannot overflow k
	kf := math.Floor(float64(n) * degree)
	if kf >= float64(len(weights)) {
		return 0, errs.InvalidConfiguration("threshold",
			"degree %v too large for %d nodes (needs %v of %d entries)", degree, n, kf+1, len(weights))
	}

	k := int(kf)
	return weights[len(weights)-k-1], nil
}

// Threshold builds the binary digraph with edge (i,j) iff w[i,j] exceeds the
// cutoff for degree. Nodes are relabeled 1..N. Diagonal entries never become
// edges.
func Threshold(w mat.Matrix, degree float64) (*digraph.Digraph, float64, error) {
	cutoff, err := Cutoff(w, degree)
	if err != nil {
		return nil, 0, err
	}

	n, _ := w.Dims()
	g := digraph.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || !(w.At(i, j) > cutoff) {
				continue
			}
			// Indices are in range and off-diagonal, SetEdge cannot fail
			_ = g.SetEdge(i+1, j+1)
		}
	}

	return g, cutoff, nil
}

// CountNonZero returns the number of non-zero entries of w
func CountNonZero(w mat.Matrix) int {
	r, c := w.Dims()
	count := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if w.At(i, j) != 0 {
				count++
			}
		}
	}
	return count
}

// Sparse reports whether w has fewer non-zero entries than N*degree and is
// therefore too sparse to reach the requested density.
func Sparse(w mat.Matrix, degree float64) bool {
	n, _ := w.Dims()
	return float64(CountNonZero(w)) < float64(n)*degree
}

// Dense builds an N×N weighted graph from row slices
func Dense(rows [][]float64) (*mat.Dense, error) {
	n := len(rows)
	if n == 0 {
		return nil, errs.InvalidConfiguration("dense", "empty matrix")
	}
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errs.InvalidConfiguration("dense", "row %d has %d columns, want %d", i, len(row), n)
		}
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data), nil
}

func order(w mat.Matrix) (int, error) {
	if w == nil {
		return 0, errs.InvalidConfiguration("threshold", "nil matrix")
	}
	r, c := w.Dims()
	if r != c || r == 0 {
		return 0, errs.InvalidConfiguration("threshold", "matrix must be square and non-empty, got %dx%d", r, c)
	}
	return r, nil
}

func flatten(w mat.Matrix, n int) []float64 {
	if d, ok := w.(*mat.Dense); ok {
		raw := d.RawMatrix()
		if raw.Stride == n {
			out := make([]float64, n*n)
			copy(out, raw.Data[:n*n])
			return out
		}
	}
	out := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out = append(out, w.At(i, j))
		}
	}
	return out
}
