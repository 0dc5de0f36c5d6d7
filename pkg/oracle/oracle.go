// Package oracle runs motif censuses over binary digraphs.
//
// An Oracle takes a directed graph and a motif size and returns, for every
// motif pattern it found, the absolute number of occurrences together with
// the total number of connected subgraphs of that size it enumerated.
// ProcessOracle drives an external census tool as a subprocess, NativeOracle
// performs the enumeration in-process.
package oracle

import (
	"context"
	"time"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/metrics"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// Oracle performs a motif census of a binary digraph
type Oracle interface {
	Census(ctx context.Context, g *digraph.Digraph, motifSize int) (*models.Census, error)
}

// Mode names an oracle implementation
type Mode string

const (
	ModeNative  Mode = "native"
	ModeProcess Mode = "process"
)

type instrumented struct {
	next    Oracle
	mode    Mode
	metrics *metrics.Metrics
}

// WithMetrics wraps o so that every census is counted and timed
func WithMetrics(o Oracle, mode Mode, m *metrics.Metrics) Oracle {
	if m == nil {
		return o
	}
	return &instrumented{next: o, mode: mode, metrics: m}
}

func (i *instrumented) Census(ctx context.Context, g *digraph.Digraph, motifSize int) (*models.Census, error) {
	start := time.Now()
	census, err := i.next.Census(ctx, g, motifSize)
	i.metrics.ObserveOracle(string(i.mode), time.Since(start), err)
	return census, err
}
