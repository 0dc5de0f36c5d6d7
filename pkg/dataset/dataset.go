// Package dataset loads groups of weighted connectivity matrices and
// generates the control data the motif comparisons run against.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
	"github.com/gilchrisn/graph-motif-service/pkg/threshold"
)

// document is the on-disk JSON layout
type document struct {
	Groups []groupDocument `json:"groups"`
}

type groupDocument struct {
	Cohort string        `json:"cohort"`
	Metric string        `json:"metric"`
	Graphs [][][]float64 `json:"graphs"`
}

// Dataset maps group keys to their weighted graphs
type Dataset struct {
	mu     sync.RWMutex
	groups map[models.GroupKey][]mat.Matrix
}

// New creates an empty dataset
func New() *Dataset {
	return &Dataset{groups: make(map[models.GroupKey][]mat.Matrix)}
}

// Load reads a dataset from a JSON file
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	d, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	return d, nil
}

// Decode reads a dataset document
func Decode(r io.Reader) (*Dataset, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid dataset document: %w", err)
	}

	d := New()
	for _, g := range doc.Groups {
		key := models.GroupKey{Cohort: g.Cohort, Metric: g.Metric}
		if key.Cohort == "" || key.Metric == "" {
			return nil, fmt.Errorf("group needs cohort and metric, got %q", key.String())
		}
		if _, dup := d.groups[key]; dup {
			return nil, fmt.Errorf("duplicate group %s", key)
		}

		graphs := make([]mat.Matrix, 0, len(g.Graphs))
		for i, rows := range g.Graphs {
			m, err := threshold.Dense(rows)
			if err != nil {
				return nil, fmt.Errorf("group %s graph %d: %w", key, i, err)
			}
			graphs = append(graphs, m)
		}
		d.groups[key] = graphs
	}
	return d, nil
}

// Encode writes the dataset document with groups in key order
func (d *Dataset) Encode(w io.Writer) error {
	var doc document
	for _, key := range d.Keys() {
		graphs, _ := d.Group(key)
		g := groupDocument{Cohort: key.Cohort, Metric: key.Metric}
		for _, m := range graphs {
			r, c := m.Dims()
			rows := make([][]float64, r)
			for i := range rows {
				rows[i] = make([]float64, c)
				for j := range rows[i] {
					rows[i][j] = m.At(i, j)
				}
			}
			g.Graphs = append(g.Graphs, rows)
		}
		doc.Groups = append(doc.Groups, g)
	}
	return json.NewEncoder(w).Encode(doc)
}

// Add registers (or replaces) the graphs of a group
func (d *Dataset) Add(key models.GroupKey, graphs []mat.Matrix) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups[key] = graphs
}

// Group returns the graphs of key
func (d *Dataset) Group(key models.GroupKey) ([]mat.Matrix, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	graphs, ok := d.groups[key]
	if !ok {
		return nil, errs.DatasetMissing("dataset", key.String())
	}
	return graphs, nil
}

// Keys returns all group keys ordered by cohort, then metric
func (d *Dataset) Keys() []models.GroupKey {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := make([]models.GroupKey, 0, len(d.groups))
	for k := range d.groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Cohort != keys[j].Cohort {
			return keys[i].Cohort < keys[j].Cohort
		}
		return keys[i].Metric < keys[j].Metric
	})
	return keys
}

// Cohorts returns the distinct cohorts of groups measured with metric
func (d *Dataset) Cohorts(metric string) []string {
	var out []string
	for _, k := range d.Keys() {
		if k.Metric == metric {
			out = append(out, k.Cohort)
		}
	}
	return out
}
