package digraph

import "math/rand/v2"

// Randomize performs up to attempts degree-preserving double edge swaps in
// place: edges a->b and c->d become a->d and c->b. A swap is skipped when
// it would create a self loop or a parallel edge. Every node keeps its in-
// and out-degree. Returns the number of swaps performed.
func (d *Digraph) Randomize(rng *rand.Rand, attempts int) int {
	edges := d.Edges()
	if len(edges) < 2 {
		return 0
	}

	swapped := 0
	for i := 0; i < attempts; i++ {
		x := rng.IntN(len(edges))
		y := rng.IntN(len(edges))
		if x == y {
			continue
		}

		a, b := edges[x].From, edges[x].To
		c, dd := edges[y].From, edges[y].To

		// Endpoints must be distinct or the rewired edges degenerate
		if a == c || b == dd || a == dd || c == b {
			continue
		}
		if d.HasEdge(a, dd) || d.HasEdge(c, b) {
			continue
		}

		d.RemoveEdge(a, b)
		d.RemoveEdge(c, dd)
		d.g.SetEdge(edge(a, dd))
		d.g.SetEdge(edge(c, b))

		edges[x] = Edge{From: a, To: dd}
		edges[y] = Edge{From: c, To: b}
		swapped++
	}

	return swapped
}
