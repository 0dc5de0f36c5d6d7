// Package aggregate runs the motif census over every graph of a group and
// collects per-pattern frequency sequences aligned by graph slot.
package aggregate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/metrics"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
	"github.com/gilchrisn/graph-motif-service/pkg/oracle"
	"github.com/gilchrisn/graph-motif-service/pkg/threshold"
)

// Options controls one aggregation run
type Options struct {
	MotifSize int
	Degree    float64

	// Source builds the binary digraph of each slot. Defaults to ThresholdSource.
	Source GraphSource

	// Strict aborts the whole group on the first oracle failure instead of
	// padding the failed slot.
	Strict bool

	// Label names the group in logs and metrics
	Label string
}

// Result is the outcome of aggregating one group
type Result struct {
	Distribution models.Distribution `json:"distribution"`
	Total        int                 `json:"total"`
	Processed    int                 `json:"processed"`
	Rejected     int                 `json:"rejected"`
	Failed       int                 `json:"failed"`
	Random       bool                `json:"random"`

	// Thresholds holds the weight cutoff of every slot that reached the
	// oracle; other slots are NaN.
	Thresholds []float64     `json:"-"`
	Failures   []error       `json:"-"`
	Duration   time.Duration `json:"duration"`
}

// Aggregator collects motif distributions for groups of weighted graphs
type Aggregator struct {
	oracle  oracle.Oracle
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates an aggregator backed by the given oracle. m may be nil.
func New(o oracle.Oracle, m *metrics.Metrics, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		oracle:  o,
		metrics: m,
		logger:  logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate thresholds each matrix, runs the census and records pattern
// frequencies. Every sequence of the returned distribution has exactly
// len(graphs) values. Sparse graphs are rejected before the oracle is
// consulted and contribute zeros. Per-graph configuration errors and,
// unless opts.Strict is set, oracle failures also contribute zeros.
func (a *Aggregator) Aggregate(ctx context.Context, graphs []mat.Matrix, opts Options) (*Result, error) {
	if opts.MotifSize < 2 {
		return nil, errs.InvalidConfiguration("aggregate", "motif size must be at least 2, got %d", opts.MotifSize)
	}
	if !(opts.Degree > 0) || math.IsInf(opts.Degree, 0) {
		return nil, errs.InvalidConfiguration("aggregate", "degree must be positive, got %v", opts.Degree)
	}

	source := opts.Source
	if source == nil {
		source = ThresholdSource{}
	}
	label := opts.Label
	if label == "" {
		label = "unnamed"
	}

	logger := a.logger.With().
		Str("group", label).
		Int("motif_size", opts.MotifSize).
		Float64("degree", opts.Degree).
		Bool("random", source.Random()).
		Logger()

	start := time.Now()
	total := len(graphs)
	acc := NewAccumulator()
	result := &Result{
		Total:      total,
		Random:     source.Random(),
		Thresholds: make([]float64, total),
	}

	logger.Info().Int("graphs", total).Msg("Starting motif aggregation")

	for i, w := range graphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Thresholds[i] = math.NaN()

		if w == nil {
			err := errs.AtIndex(errs.InvalidConfiguration("aggregate", "missing matrix"), i)
			if ferr := a.fail(logger, result, acc, label, i, err, false); ferr != nil {
				return nil, ferr
			}
			continue
		}

		if threshold.Sparse(w, opts.Degree) {
			result.Rejected++
			acc.Skip()
			a.metrics.GraphRejected(label, "sparse")
			logger.Debug().Int("graph", i).Int("nonzero", threshold.CountNonZero(w)).Msg("Graph too sparse, skipped")
			continue
		}

		g, cutoff, err := source.Binary(i, w, opts.Degree)
		if err != nil {
			if ferr := a.fail(logger, result, acc, label, i, errs.AtIndex(err, i), false); ferr != nil {
				return nil, ferr
			}
			continue
		}
		result.Thresholds[i] = cutoff

		logger.Debug().
			Int("graph", i+1).
			Int("of", total).
			Float64("threshold", cutoff).
			Int("edges", g.Size()).
			Msg("Motif finding progress")

		census, err := a.oracle.Census(ctx, g, opts.MotifSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if ferr := a.fail(logger, result, acc, label, i, errs.AtIndex(err, i), opts.Strict); ferr != nil {
				return nil, ferr
			}
			continue
		}

		acc.Observe(census.Frequencies())
		result.Processed++
		a.metrics.GraphProcessed(label)
	}

	dist, err := acc.Finalize(total)
	if err != nil {
		return nil, fmt.Errorf("finalize %s: %w", label, err)
	}
	result.Distribution = dist
	result.Duration = time.Since(start)

	logger.Info().
		Int("processed", result.Processed).
		Int("rejected", result.Rejected).
		Int("failed", result.Failed).
		Int("patterns", len(dist)).
		Dur("duration", result.Duration).
		Msg("Motif aggregation completed")

	return result, nil
}

// fail records a per-graph failure. It returns err when the failure must
// abort the group.
func (a *Aggregator) fail(logger zerolog.Logger, result *Result, acc *Accumulator, label string, index int, err error, strict bool) error {
	if strict && errs.KindOf(err) == errs.KindOracleFailure {
		logger.Error().Err(err).Int("graph", index).Msg("Census failed, aborting group")
		return err
	}

	logger.Warn().Err(err).Int("graph", index).Str("kind", errs.KindOf(err).String()).Msg("Graph skipped")
	result.Failed++
	result.Failures = append(result.Failures, err)
	acc.Skip()
	a.metrics.GraphRejected(label, errs.KindOf(err).String())
	return nil
}
