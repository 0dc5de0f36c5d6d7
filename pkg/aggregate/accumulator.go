package aggregate

import (
	"fmt"

	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// Accumulator collects per-graph census frequencies for one group in two
// phases. Observe appends one value per processed graph to every pattern
// seen so far, so the counted portion of every sequence is aligned by
// processing order. Finalize pads the skipped slots and checks that every
// sequence covers the whole group.
type Accumulator struct {
	values    map[int][]float64
	processed int
	skipped   int
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{values: make(map[int][]float64)}
}

// Observe records the normalized frequencies of one processed graph
func (a *Accumulator) Observe(freq map[int]float64) {
	// Patterns already known get this graph's value, or 0 when absent
	for id, seq := range a.values {
		a.values[id] = append(seq, freq[id])
	}

	// Patterns seen for the first time are back-filled for earlier graphs
	for id, v := range freq {
		if _, known := a.values[id]; known {
			continue
		}
		seq := make([]float64, a.processed, a.processed+1)
		a.values[id] = append(seq, v)
	}

	a.processed++
}

// Skip records a graph that contributes no census (rejected or failed)
func (a *Accumulator) Skip() {
	a.skipped++
}

// Processed returns the number of observed graphs
func (a *Accumulator) Processed() int {
	return a.processed
}

// Skipped returns the number of skipped graphs
func (a *Accumulator) Skipped() int {
	return a.skipped
}

// Finalize right-pads every sequence with zeros to total slots. total must
// equal the number of observed plus skipped graphs.
func (a *Accumulator) Finalize(total int) (models.Distribution, error) {
	if a.processed+a.skipped != total {
		return nil, fmt.Errorf("slot mismatch: %d processed + %d skipped != %d graphs", a.processed, a.skipped, total)
	}

	dist := make(models.Distribution, len(a.values))
	for id, seq := range a.values {
		if len(seq) != a.processed {
			return nil, fmt.Errorf("pattern %d has %d values for %d processed graphs", id, len(seq), a.processed)
		}
		padded := make([]float64, total)
		copy(padded, seq)
		dist[id] = padded
	}

	return dist, nil
}
