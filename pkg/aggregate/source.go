package aggregate

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/threshold"
)

// GraphSource produces the binary digraph for one slot of a group
type GraphSource interface {
	// Binary returns the digraph for slot index and the weight cutoff of
	// the weighted matrix occupying that slot
	Binary(index int, w mat.Matrix, degree float64) (*digraph.Digraph, float64, error)
	// Random reports whether the source substitutes randomized graphs
	Random() bool
}

// ThresholdSource derives every slot's digraph by thresholding its matrix
type ThresholdSource struct{}

// Binary thresholds w at the given target degree
func (ThresholdSource) Binary(_ int, w mat.Matrix, degree float64) (*digraph.Digraph, float64, error) {
	return threshold.Threshold(w, degree)
}

// Random is false: graphs come straight from the data
func (ThresholdSource) Random() bool { return false }

// SubstituteSource replaces each slot's digraph with a precomputed one at
// the same index, typically an edge-swapped randomization of the
// thresholded graph. The cutoff is still computed from the weighted matrix.
type SubstituteSource struct {
	Graphs []*digraph.Digraph
}

// Binary returns the substitute digraph for index
func (s SubstituteSource) Binary(index int, w mat.Matrix, degree float64) (*digraph.Digraph, float64, error) {
	cutoff, err := threshold.Cutoff(w, degree)
	if err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(s.Graphs) || s.Graphs[index] == nil {
		return nil, 0, errs.InvalidConfiguration("substitute", "no substitute graph for slot %d (have %d)", index, len(s.Graphs))
	}
	return s.Graphs[index], cutoff, nil
}

// Random is true: slots hold randomized graphs
func (SubstituteSource) Random() bool { return true }
