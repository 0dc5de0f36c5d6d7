package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
	"github.com/gilchrisn/graph-motif-service/pkg/threshold"
)

// DefaultSwapIterations is the number of double-edge swaps attempted per graph
const DefaultSwapIterations = 2500

// SwapGraph is a serialized randomized digraph; Edges holds [from, to] pairs
type SwapGraph struct {
	Nodes int      `json:"nodes"`
	Edges [][2]int `json:"edges"`
}

// SwapData holds degree-preserving randomizations of every graph of every
// group, slot for slot. A nil slot marks a graph that could not be
// thresholded.
type SwapData struct {
	Degree     float64                 `json:"degree"`
	Iterations int                     `json:"iterations"`
	Seed       uint64                  `json:"seed"`
	Groups     map[string][]*SwapGraph `json:"groups"`
}

// SwapOptions controls swap data generation
type SwapOptions struct {
	Degree     float64
	Iterations int
	Seed       uint64
}

// MakeSwapData thresholds every graph of the given groups at opts.Degree and
// randomizes the result with degree-preserving double-edge swaps.
func MakeSwapData(ctx context.Context, d *Dataset, keys []models.GroupKey, opts SwapOptions, logger zerolog.Logger) (*SwapData, error) {
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultSwapIterations
	}

	out := &SwapData{
		Degree:     opts.Degree,
		Iterations: opts.Iterations,
		Seed:       opts.Seed,
		Groups:     make(map[string][]*SwapGraph, len(keys)),
	}
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(opts.Iterations)))

	for _, key := range keys {
		graphs, err := d.Group(key)
		if err != nil {
			return nil, err
		}

		slots := make([]*SwapGraph, len(graphs))
		for i, w := range graphs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			g, _, err := threshold.Threshold(w, opts.Degree)
			if err != nil {
				logger.Warn().Err(err).Str("group", key.String()).Int("graph", i).Msg("Skipping graph")
				continue
			}
			swaps := g.Randomize(rng, opts.Iterations)
			slots[i] = encodeSwapGraph(g)

			logger.Debug().Str("group", key.String()).Int("graph", i).Int("swaps", swaps).Msg("Randomized graph")
		}
		out.Groups[key.String()] = slots

		logger.Info().Str("group", key.String()).Int("graphs", len(graphs)).Msg("Generated swap data")
	}

	return out, nil
}

func encodeSwapGraph(g *digraph.Digraph) *SwapGraph {
	edges := g.Edges()
	sg := &SwapGraph{Nodes: g.Order(), Edges: make([][2]int, len(edges))}
	for i, e := range edges {
		sg.Edges[i] = [2]int{e.From, e.To}
	}
	return sg
}

// Graphs decodes the randomized digraphs of a group
func (s *SwapData) Graphs(key models.GroupKey) ([]*digraph.Digraph, error) {
	slots, ok := s.Groups[key.String()]
	if !ok {
		return nil, fmt.Errorf("no swap data for group %s", key)
	}

	out := make([]*digraph.Digraph, len(slots))
	for i, sg := range slots {
		if sg == nil {
			continue
		}
		edges := make([]digraph.Edge, len(sg.Edges))
		for j, e := range sg.Edges {
			edges[j] = digraph.Edge{From: e[0], To: e[1]}
		}
		g, err := digraph.FromEdges(sg.Nodes, edges)
		if err != nil {
			return nil, fmt.Errorf("group %s graph %d: %w", key, i, err)
		}
		out[i] = g
	}
	return out, nil
}

// SwapPath returns the conventional swap data file for a degree
func SwapPath(dir string, degree float64) string {
	return filepath.Join(dir, fmt.Sprintf("SwapData%g.json", degree))
}

// Save writes the swap data as JSON
func (s *SwapData) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode swap data: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSwapData reads swap data written by Save
func LoadSwapData(path string) (*SwapData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read swap data: %w", err)
	}
	var s SwapData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid swap data %s: %w", path, err)
	}
	return &s, nil
}
