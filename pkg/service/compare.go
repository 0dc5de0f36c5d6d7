package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/graph-motif-service/pkg/dataset"
	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
	"github.com/gilchrisn/graph-motif-service/pkg/stats"
)

// CompareRequest describes a multi-group comparison run
type CompareRequest struct {
	Metrics   []string `json:"metrics"`
	Cohorts   []string `json:"cohorts"`
	MotifSize int      `json:"size"`
	Degree    float64  `json:"degree"`

	// EdgeSwap compares each cohort with its own edge-swapped graphs instead
	// of the shared uniform random group
	EdgeSwap bool `json:"edgeSwap"`
}

// MetricTable is the comparison table of one correlation metric
type MetricTable struct {
	Metric string       `json:"metric" yaml:"metric"`
	Table  *stats.Table `json:"table" yaml:"table"`
}

// Report is the outcome of a comparison run
type Report struct {
	ID        string        `json:"id" yaml:"id"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	MotifSize int           `json:"size" yaml:"size"`
	Degree    float64       `json:"degree" yaml:"degree"`
	EdgeSwap  bool          `json:"edge_swap" yaml:"edge_swap"`
	Cohorts   []string      `json:"cohorts" yaml:"cohorts"`
	Tables    []MetricTable `json:"tables" yaml:"tables"`
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the report as YAML
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Compare aggregates every cohort of every metric together with its control
// and runs the pairwise t-tests. Groups are aggregated concurrently.
func (s *MotifService) Compare(ctx context.Context, req CompareRequest) (*Report, error) {
	if len(req.Metrics) == 0 || len(req.Cohorts) == 0 {
		return nil, errs.InvalidConfiguration("compare", "metrics and cohorts are required")
	}

	report := &Report{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		MotifSize: req.MotifSize,
		Degree:    req.Degree,
		EdgeSwap:  req.EdgeSwap,
		Cohorts:   req.Cohorts,
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Strs("metrics", req.Metrics).
		Strs("cohorts", req.Cohorts).
		Bool("edge_swap", req.EdgeSwap).
		Msg("Starting comparison")

	for _, metric := range req.Metrics {
		s.logger.Info().Str("metric", metric).Msg("Comparing metric")

		groups, controls, err := s.collect(ctx, metric, req)
		if err != nil {
			return nil, err
		}

		table, err := stats.Comparator{Groups: req.Cohorts}.Compare(groups, controls)
		if err != nil {
			return nil, fmt.Errorf("failed to compare %s: %w", metric, err)
		}
		report.Tables = append(report.Tables, MetricTable{Metric: metric, Table: table})
	}

	s.logger.Info().Str("report_id", report.ID).Msg("Comparison completed")
	return report, nil
}

// collect finds the distributions of every cohort of a metric and of their
// controls
func (s *MotifService) collect(ctx context.Context, metric string, req CompareRequest) (map[string]models.Distribution, map[string]models.Distribution, error) {
	type job struct {
		cohort  string
		control bool
		req     FindRequest
	}

	var jobs []job
	for _, cohort := range req.Cohorts {
		group := models.GroupKey{Cohort: cohort, Metric: metric}
		jobs = append(jobs, job{cohort: cohort, req: FindRequest{Group: group, MotifSize: req.MotifSize, Degree: req.Degree}})
		if req.EdgeSwap {
			jobs = append(jobs, job{cohort: cohort, control: true, req: FindRequest{Group: group, MotifSize: req.MotifSize, Degree: req.Degree, Random: true}})
		}
	}
	if !req.EdgeSwap {
		jobs = append(jobs, job{control: true, req: FindRequest{Group: dataset.RandomKey, MotifSize: req.MotifSize, Degree: req.Degree}})
	}

	results := make([]models.Distribution, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallel)
	for i, j := range jobs {
		g.Go(func() error {
			res, err := s.Find(ctx, j.req)
			if err != nil {
				return err
			}
			results[i] = res.Distribution
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	groups := make(map[string]models.Distribution, len(req.Cohorts))
	controls := make(map[string]models.Distribution, len(req.Cohorts))
	for i, j := range jobs {
		switch {
		case !j.control:
			groups[j.cohort] = results[i]
		case req.EdgeSwap:
			controls[j.cohort] = results[i]
		default:
			// One uniform random group serves as every cohort's control
			for _, cohort := range req.Cohorts {
				controls[cohort] = results[i]
			}
		}
	}
	return groups, controls, nil
}

// SummaryRequest asks for the top patterns of a metric across cohorts
type SummaryRequest struct {
	Metric    string   `json:"metric"`
	Cohorts   []string `json:"cohorts"`
	MotifSize int      `json:"size"`
	Degree    float64  `json:"degree"`
	Top       int      `json:"top"`
}

// CohortSummary is the per-pattern mean and spread of one cohort
type CohortSummary struct {
	Cohort   string                 `json:"cohort" yaml:"cohort"`
	Patterns []stats.PatternSummary `json:"patterns" yaml:"patterns"`
}

// Summarize picks the top patterns of the first cohort by mean frequency
// and reports every cohort's mean and standard deviation for them
func (s *MotifService) Summarize(ctx context.Context, req SummaryRequest) ([]CohortSummary, error) {
	if len(req.Cohorts) == 0 {
		return nil, errs.InvalidConfiguration("summary", "at least one cohort is required")
	}

	var patterns []int
	out := make([]CohortSummary, 0, len(req.Cohorts))
	for i, cohort := range req.Cohorts {
		res, err := s.Find(ctx, FindRequest{
			Group:     models.GroupKey{Cohort: cohort, Metric: req.Metric},
			MotifSize: req.MotifSize,
			Degree:    req.Degree,
		})
		if err != nil {
			return nil, err
		}

		if i == 0 {
			for _, p := range stats.Summary(res.Distribution, req.Top) {
				patterns = append(patterns, p.Pattern)
			}
		}
		out = append(out, CohortSummary{Cohort: cohort, Patterns: stats.Profile(res.Distribution, patterns)})
	}
	return out, nil
}

// MakeSwapData generates edge-swap control data for every dataset group,
// writes it to the swap directory and makes it available to Find
func (s *MotifService) MakeSwapData(ctx context.Context, opts dataset.SwapOptions) (*dataset.SwapData, string, error) {
	data, err := dataset.MakeSwapData(ctx, s.dataset, s.dataset.Keys(), opts, s.logger)
	if err != nil {
		return nil, "", err
	}

	path := dataset.SwapPath(s.opts.SwapDir, opts.Degree)
	if err := data.Save(path); err != nil {
		return nil, "", err
	}
	s.SetSwapData(data)

	s.logger.Info().Str("path", path).Int("groups", len(data.Groups)).Msg("Saved swap data")
	return data, path, nil
}
