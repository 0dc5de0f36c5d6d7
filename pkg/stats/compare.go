package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// Comparator runs t-tests for every pattern shared by a set of groups
type Comparator struct {
	// Groups fixes the column order; the first group is the reference
	// whose mean frequency orders the rows.
	Groups []string
}

// Column names one comparison of a Table
type Column struct {
	Name  string `json:"name" yaml:"name"`
	First string `json:"first" yaml:"first"`
	// Second is empty when the first group is compared with its control
	Second  string `json:"second,omitempty" yaml:"second,omitempty"`
	Control bool   `json:"control" yaml:"control"`
}

// Row holds the results of all comparisons for one pattern
type Row struct {
	Pattern int     `json:"pattern" yaml:"pattern"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Tests   []TTest `json:"tests" yaml:"tests"`
}

// Table is a full comparison run
type Table struct {
	Columns []Column `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// Compare tests every pair of groups, in order, then every group against its
// control when one is given. Only patterns present in all inputs are
// compared. Rows are sorted by the reference group's mean, descending.
func (c Comparator) Compare(groups, controls map[string]models.Distribution) (*Table, error) {
	if len(c.Groups) == 0 {
		return nil, errs.InvalidConfiguration("compare", "no groups to compare")
	}

	inputs := make([]models.Distribution, 0, len(c.Groups)+len(controls))
	for _, name := range c.Groups {
		dist, ok := groups[name]
		if !ok {
			return nil, errs.DatasetMissing("compare", name)
		}
		inputs = append(inputs, dist)
	}

	table := &Table{}
	for i := 0; i < len(c.Groups); i++ {
		for j := i + 1; j < len(c.Groups); j++ {
			table.Columns = append(table.Columns, Column{
				Name:   fmt.Sprintf("%s to %s", c.Groups[i], c.Groups[j]),
				First:  c.Groups[i],
				Second: c.Groups[j],
			})
		}
	}
	for _, name := range c.Groups {
		control, ok := controls[name]
		if !ok {
			continue
		}
		inputs = append(inputs, control)
		table.Columns = append(table.Columns, Column{
			Name:    fmt.Sprintf("%s to Rand", name),
			First:   name,
			Control: true,
		})
	}

	reference := groups[c.Groups[0]]
	for _, id := range shared(inputs) {
		row := Row{Pattern: id}
		if len(reference[id]) > 0 {
			row.Mean = stat.Mean(reference[id], nil)
		}
		for _, col := range table.Columns {
			second := controls[col.First]
			if !col.Control {
				second = groups[col.Second]
			}
			row.Tests = append(row.Tests, TTestInd(groups[col.First][id], second[id]))
		}
		table.Rows = append(table.Rows, row)
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i].Mean > table.Rows[j].Mean
	})

	return table, nil
}

// shared returns the ascending pattern ids present in every distribution
func shared(dists []models.Distribution) []int {
	if len(dists) == 0 {
		return nil
	}
	var ids []int
	for _, id := range dists[0].Patterns() {
		present := true
		for _, d := range dists[1:] {
			if _, ok := d[id]; !ok {
				present = false
				break
			}
		}
		if present {
			ids = append(ids, id)
		}
	}
	return ids
}

// WriteJSON writes the table as indented JSON
func (t *Table) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// WriteYAML writes the table as YAML
func (t *Table) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}

// PatternSummary is the mean and population standard deviation of one
// pattern's frequencies across a group
type PatternSummary struct {
	Pattern int     `json:"pattern" yaml:"pattern"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Std     float64 `json:"std" yaml:"std"`
}

// Summary returns the top patterns of dist by mean frequency. top <= 0
// returns every pattern.
func Summary(dist models.Distribution, top int) []PatternSummary {
	out := Profile(dist, dist.Patterns())
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mean > out[j].Mean
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}

// Profile summarizes dist for the given patterns in order. Patterns absent
// from dist summarize to zero.
func Profile(dist models.Distribution, patterns []int) []PatternSummary {
	out := make([]PatternSummary, 0, len(patterns))
	for _, id := range patterns {
		s := PatternSummary{Pattern: id}
		if values, ok := dist[id]; ok && len(values) > 0 {
			s.Mean, s.Std = stat.PopMeanStdDev(values, nil)
		}
		out = append(out, s)
	}
	return out
}
