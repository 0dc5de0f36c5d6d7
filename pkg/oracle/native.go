package oracle

import (
	"context"
	"sort"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// MaxNativeMotifSize bounds the in-process census; canonical labeling
// tries every vertex permutation.
const MaxNativeMotifSize = 6

// NativeOracle enumerates connected induced subgraphs in-process with the
// ESU algorithm (Wernicke 2006) and labels each one by its canonical
// pattern id, the smallest id over all vertex orderings.
type NativeOracle struct{}

// NewNativeOracle creates an in-process census oracle
func NewNativeOracle() *NativeOracle {
	return &NativeOracle{}
}

// Census enumerates every connected motifSize-node subgraph of g
func (o *NativeOracle) Census(ctx context.Context, g *digraph.Digraph, motifSize int) (*models.Census, error) {
	if motifSize < 2 || motifSize > MaxNativeMotifSize {
		return nil, errs.InvalidConfiguration("census", "native motif size must be in [2,%d], got %d", MaxNativeMotifSize, motifSize)
	}

	n := g.Order()
	neighbors := make([][]int, n+1)
	for v := 1; v <= n; v++ {
		neighbors[v] = g.Neighbors(v)
	}

	e := &esu{
		g:         g,
		k:         motifSize,
		neighbors: neighbors,
		perms:     permutations(motifSize),
		canonical: make(map[int]int),
		counts:    make(map[int]float64),
	}

	for v := 1; v <= n; v++ {
		if err := ctx.Err(); err != nil {
			return nil, errs.OracleFailure("census", err)
		}

		var ext []int
		for _, u := range neighbors[v] {
			if u > v {
				ext = append(ext, u)
			}
		}
		e.extend([]int{v}, ext, v)
	}

	census := &models.Census{Total: e.total}
	ids := make([]int, 0, len(e.counts))
	for id := range e.counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		census.Patterns = append(census.Patterns, models.PatternCount{ID: id, Occurrences: e.counts[id]})
	}
	return census, nil
}

type esu struct {
	g         *digraph.Digraph
	k         int
	neighbors [][]int
	perms     [][]int
	canonical map[int]int // raw id -> canonical id
	counts    map[int]float64
	total     float64
}

func (e *esu) extend(sub, ext []int, root int) {
	if len(sub) == e.k {
		e.record(sub)
		return
	}

	for len(ext) > 0 {
		w := ext[len(ext)-1]
		ext = ext[:len(ext)-1]

		next := append([]int(nil), ext...)
		for _, u := range e.neighbors[w] {
			if u > root && !contains(next, u) && e.exclusive(u, sub) {
				next = append(next, u)
			}
		}

		grown := append(append([]int(nil), sub...), w)
		e.extend(grown, next, root)
	}
}

// exclusive reports whether u is outside sub and not adjacent to any of it
func (e *esu) exclusive(u int, sub []int) bool {
	for _, s := range sub {
		if s == u || contains(e.neighbors[s], u) {
			return false
		}
	}
	return true
}

func (e *esu) record(sub []int) {
	raw := digraph.EncodeAdjacency(e.k, func(i, j int) bool {
		return e.g.HasEdge(sub[i], sub[j])
	})

	id, ok := e.canonical[raw]
	if !ok {
		id = -1
		for _, p := range e.perms {
			candidate := digraph.EncodeAdjacency(e.k, func(i, j int) bool {
				return e.g.HasEdge(sub[p[i]], sub[p[j]])
			})
			if id == -1 || candidate < id {
				id = candidate
			}
		}
		e.canonical[raw] = id
	}

	e.counts[id]++
	e.total++
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// permutations returns every ordering of 0..k-1 (Heap's algorithm)
func permutations(k int) [][]int {
	p := make([]int, k)
	for i := range p {
		p[i] = i
	}

	var out [][]int
	var generate func(int)
	generate = func(size int) {
		if size == 1 {
			out = append(out, append([]int(nil), p...))
			return
		}
		for i := 0; i < size; i++ {
			generate(size - 1)
			if size%2 == 1 {
				p[0], p[size-1] = p[size-1], p[0]
			} else {
				p[i], p[size-1] = p[size-1], p[i]
			}
		}
	}
	generate(k)
	return out
}
