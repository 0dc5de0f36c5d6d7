package digraph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Digraph is a simple binary directed graph whose nodes are labeled 1..N.
// It has no self loops and no parallel edges.
type Digraph struct {
	g *simple.DirectedGraph
	n int
}

// Edge is a directed (From, To) pair of 1-based node labels
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// New creates a digraph with nodes 1..n and no edges
func New(n int) *Digraph {
	g := simple.NewDirectedGraph()
	for id := 1; id <= n; id++ {
		g.AddNode(simple.Node(int64(id)))
	}
	return &Digraph{g: g, n: n}
}

// Order returns the number of nodes
func (d *Digraph) Order() int {
	return d.n
}

// Size returns the number of edges
func (d *Digraph) Size() int {
	n := 0
	for it := d.g.Edges(); it.Next(); {
		n++
	}
	return n
}

// SetEdge adds the edge from -> to. Adding an existing edge is a no-op.
func (d *Digraph) SetEdge(from, to int) error {
	if from < 1 || from > d.n || to < 1 || to > d.n {
		return fmt.Errorf("node index out of range: from=%d, to=%d, numNodes=%d", from, to, d.n)
	}
	if from == to {
		return fmt.Errorf("self loop on node %d", from)
	}
	d.g.SetEdge(edge(from, to))
	return nil
}

// RemoveEdge removes the edge from -> to if present
func (d *Digraph) RemoveEdge(from, to int) {
	d.g.RemoveEdge(int64(from), int64(to))
}

// HasEdge reports whether the edge from -> to exists
func (d *Digraph) HasEdge(from, to int) bool {
	return d.g.HasEdgeFromTo(int64(from), int64(to))
}

// Edges returns all edges sorted by (From, To)
func (d *Digraph) Edges() []Edge {
	var edges []Edge
	it := d.g.Edges()
	for it.Next() {
		e := it.Edge()
		edges = append(edges, Edge{From: int(e.From().ID()), To: int(e.To().ID())})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Neighbors returns the sorted labels adjacent to node in either direction
func (d *Digraph) Neighbors(node int) []int {
	seen := make(map[int]bool)
	for _, it := range []graph.Nodes{d.g.From(int64(node)), d.g.To(int64(node))} {
		for it.Next() {
			seen[int(it.Node().ID())] = true
		}
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// OutDegree returns the number of edges leaving node
func (d *Digraph) OutDegree(node int) int {
	return countNodes(d.g.From(int64(node)))
}

// InDegree returns the number of edges entering node
func (d *Digraph) InDegree(node int) int {
	return countNodes(d.g.To(int64(node)))
}

// iterator Len may be negative for lazy iterators, so count explicitly
func countNodes(it graph.Nodes) int {
	n := 0
	for it.Next() {
		n++
	}
	return n
}

// Clone returns a deep copy of the digraph
func (d *Digraph) Clone() *Digraph {
	cp := New(d.n)
	for _, e := range d.Edges() {
		cp.g.SetEdge(edge(e.From, e.To))
	}
	return cp
}

func edge(from, to int) simple.Edge {
	return simple.Edge{F: simple.Node(int64(from)), T: simple.Node(int64(to))}
}

// FromEdges builds a digraph on n nodes from an edge list
func FromEdges(n int, edges []Edge) (*Digraph, error) {
	d := New(n)
	for _, e := range edges {
		if err := d.SetEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// WriteEdgeList writes the census input format: the node count on the
// first line, then one "source target" line per edge.
func (d *Digraph) WriteEdgeList(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n", d.n); err != nil {
		return err
	}
	for _, e := range d.Edges() {
		if _, err := fmt.Fprintf(bw, "%d %d\n", e.From, e.To); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadEdgeList parses the census input format. Duplicate edges collapse.
func ReadEdgeList(r io.Reader) (*Digraph, error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	var d *Digraph

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if d == nil {
			n, err := strconv.Atoi(line)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid node count on line %d: %q", lineNum, line)
			}
			d = New(n)
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid edge on line %d: %q", lineNum, line)
		}
		from, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid source on line %d: %w", lineNum, err)
		}
		to, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid target on line %d: %w", lineNum, err)
		}
		if err := d.SetEdge(from, to); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("empty edge list")
	}
	return d, nil
}
