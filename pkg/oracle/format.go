package oracle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// WriteInput serializes g in the census tool's input format
func WriteInput(w io.Writer, g *digraph.Digraph) error {
	return g.WriteEdgeList(w)
}

// ParseOutput parses the census tool's output: the total number of
// enumerated subgraphs on the first line, then "patternId occurrences"
// pairs. Repeated ids are summed.
func ParseOutput(r io.Reader) (*models.Census, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	census := &models.Census{}
	counts := make(map[int]float64)
	seenTotal := false
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !seenTotal {
			total, err := parseNumber(line)
			if err != nil {
				return nil, fmt.Errorf("invalid subgraph total on line %d: %w", lineNum, err)
			}
			if total < 0 {
				return nil, fmt.Errorf("negative subgraph total %v", total)
			}
			census.Total = total
			seenTotal = true
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("expected 2 fields on line %d, got %d", lineNum, len(fields))
		}
		idValue, err := parseNumber(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid pattern id on line %d: %w", lineNum, err)
		}
		if idValue < 0 || idValue != math.Trunc(idValue) {
			return nil, fmt.Errorf("pattern id on line %d is not a non-negative integer: %s", lineNum, fields[0])
		}
		occurrences, err := parseNumber(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid occurrence count on line %d: %w", lineNum, err)
		}
		if occurrences < 0 {
			return nil, fmt.Errorf("negative occurrence count on line %d", lineNum)
		}
		counts[int(idValue)] += occurrences
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !seenTotal {
		return nil, fmt.Errorf("empty census output")
	}
	if census.Total == 0 && len(counts) > 0 {
		return nil, fmt.Errorf("census reports %d patterns but zero subgraphs", len(counts))
	}

	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		census.Patterns = append(census.Patterns, models.PatternCount{ID: id, Occurrences: counts[id]})
	}

	return census, nil
}

// WriteOutput serializes a census in the tool's output format
func WriteOutput(w io.Writer, c *models.Census) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", strconv.FormatFloat(c.Total, 'g', -1, 64))
	for _, p := range c.Patterns {
		fmt.Fprintf(bw, "%d %s\n", p.ID, strconv.FormatFloat(p.Occurrences, 'g', -1, 64))
	}
	return bw.Flush()
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
