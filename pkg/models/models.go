package models

import (
	"fmt"
	"sort"
	"strings"
)

// GroupKey identifies a cohort/correlation-metric pairing
type GroupKey struct {
	Cohort string `json:"cohort" yaml:"cohort"`
	Metric string `json:"metric" yaml:"metric"`
}

// String returns the "cohort/metric" label of the group
func (k GroupKey) String() string {
	return k.Cohort + "/" + k.Metric
}

// ParseGroupKey parses a "cohort/metric" label
func ParseGroupKey(label string) (GroupKey, error) {
	parts := strings.SplitN(label, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return GroupKey{}, fmt.Errorf("invalid group label %q (want cohort/metric)", label)
	}
	return GroupKey{Cohort: parts[0], Metric: parts[1]}, nil
}

// PatternCount is one line of a motif census
type PatternCount struct {
	ID          int     `json:"id"`
	Occurrences float64 `json:"occurrences"`
}

// Census is the parsed result of one oracle invocation
type Census struct {
	Total    float64        `json:"total"`    // number of connected subgraphs enumerated
	Patterns []PatternCount `json:"patterns"` // absolute occurrences per pattern
}

// Frequencies returns occurrences normalized by the census total
func (c *Census) Frequencies() map[int]float64 {
	freq := make(map[int]float64, len(c.Patterns))
	if c.Total == 0 {
		return freq
	}
	for _, p := range c.Patterns {
		freq[p.ID] += p.Occurrences / c.Total
	}
	return freq
}

// Distribution maps a motif pattern id to one normalized frequency per
// graph slot of a group. A missing key means the pattern was never observed.
type Distribution map[int][]float64

// Patterns returns the pattern ids in ascending order
func (d Distribution) Patterns() []int {
	ids := make([]int, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Slots returns the common sequence length, or -1 if sequences disagree
func (d Distribution) Slots() int {
	slots := -1
	for _, values := range d {
		if slots == -1 {
			slots = len(values)
		} else if slots != len(values) {
			return -1
		}
	}
	if slots == -1 {
		return 0
	}
	return slots
}

// Clone returns a deep copy of the distribution
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for id, values := range d {
		cp := make([]float64, len(values))
		copy(cp, values)
		out[id] = cp
	}
	return out
}

// CacheKey identifies one aggregation run
type CacheKey struct {
	Group     GroupKey `json:"group"`
	MotifSize int      `json:"motif_size"`
	Degree    float64  `json:"degree"`
	Random    bool     `json:"random"` // true when randomized substitute graphs were used
}

// APIResponse is the envelope of every HTTP API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
