package digraph

import "fmt"

// MaxPatternSize bounds pattern ids to fit in an int (k*(k-1) bits)
const MaxPatternSize = 8

// EncodeAdjacency packs the off-diagonal entries of a k×k adjacency
// relation into a pattern id. Entries are taken in row-major order with the
// last entry as the least significant bit.
func EncodeAdjacency(k int, has func(i, j int) bool) int {
	id := 0
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			id <<= 1
			if has(i, j) {
				id |= 1
			}
		}
	}
	return id
}

// FromPatternID decodes a pattern id of the given motif size into a digraph
// on nodes 1..size.
func FromPatternID(id, size int) (*Digraph, error) {
	if size < 2 || size > MaxPatternSize {
		return nil, fmt.Errorf("pattern size %d out of range [2,%d]", size, MaxPatternSize)
	}
	bits := size * (size - 1)
	if id < 0 || id >= 1<<bits {
		return nil, fmt.Errorf("pattern id %d out of range for size %d", id, size)
	}

	d := New(size)
	bit := bits - 1
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i == j {
				continue
			}
			if id&(1<<bit) != 0 {
				d.g.SetEdge(edge(i+1, j+1))
			}
			bit--
		}
	}
	return d, nil
}
