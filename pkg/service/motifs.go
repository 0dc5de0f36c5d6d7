// Package service ties the dataset, aggregator, cache and comparator
// together into the operations exposed by the CLI and the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/graph-motif-service/pkg/aggregate"
	"github.com/gilchrisn/graph-motif-service/pkg/cache"
	"github.com/gilchrisn/graph-motif-service/pkg/dataset"
	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// Options configures a MotifService
type Options struct {
	Dataset    *dataset.Dataset
	Aggregator *aggregate.Aggregator
	Cache      *cache.ResultCache

	// SwapDir holds the swap data files used for edge-swap controls
	SwapDir string

	RandomGraphs int
	RandomNodes  int
	RandomSeed   uint64

	Strict   bool
	Parallel int
}

// FindRequest asks for the motif distribution of one group
type FindRequest struct {
	Group     models.GroupKey `json:"group"`
	MotifSize int             `json:"size"`
	Degree    float64         `json:"degree"`

	// Random substitutes edge-swapped graphs for the thresholded ones
	Random bool `json:"random"`
}

// FindResult is a group distribution and where it came from
type FindResult struct {
	Key          models.CacheKey     `json:"key"`
	Distribution models.Distribution `json:"distribution"`
	Cached       bool                `json:"cached"`

	// Run is nil when the distribution was served from the cache
	Run *aggregate.Result `json:"run,omitempty"`
}

// MotifService finds and compares motif distributions
type MotifService struct {
	dataset    *dataset.Dataset
	aggregator *aggregate.Aggregator
	cache      *cache.ResultCache
	opts       Options
	logger     zerolog.Logger

	mutex    sync.Mutex
	random   []mat.Matrix
	swapData map[float64]*dataset.SwapData
}

// New creates a motif service
func New(opts Options, logger zerolog.Logger) *MotifService {
	if opts.Dataset == nil {
		opts.Dataset = dataset.New()
	}
	if opts.RandomGraphs <= 0 {
		opts.RandomGraphs = dataset.DefaultRandomGraphs
	}
	if opts.RandomNodes <= 0 {
		opts.RandomNodes = dataset.DefaultRandomNodes
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}

	return &MotifService{
		dataset:    opts.Dataset,
		aggregator: opts.Aggregator,
		cache:      opts.Cache,
		opts:       opts,
		logger:     logger.With().Str("component", "motif_service").Logger(),
		swapData:   make(map[float64]*dataset.SwapData),
	}
}

// Dataset returns the dataset the service reads groups from
func (s *MotifService) Dataset() *dataset.Dataset {
	return s.dataset
}

// Groups lists the groups of the dataset
func (s *MotifService) Groups() []models.GroupKey {
	return s.dataset.Keys()
}

// Find returns the motif distribution of one group, from the cache when
// possible. Dataset and configuration errors are returned as is.
func (s *MotifService) Find(ctx context.Context, req FindRequest) (*FindResult, error) {
	if req.MotifSize < 2 {
		return nil, errs.InvalidConfiguration("find", "motif size must be at least 2, got %d", req.MotifSize)
	}
	if !(req.Degree > 0) {
		return nil, errs.InvalidConfiguration("find", "degree must be positive, got %v", req.Degree)
	}

	group := req.Group
	if group.Cohort == dataset.RandomCohort {
		group = dataset.RandomKey
	}
	key := models.CacheKey{Group: group, MotifSize: req.MotifSize, Degree: req.Degree, Random: req.Random}

	if s.cache != nil {
		if dist, ok := s.cache.Get(key); ok {
			s.logger.Info().Str("group", group.String()).Bool("random", req.Random).Msg("Serving distribution from cache")
			return &FindResult{Key: key, Distribution: dist, Cached: true}, nil
		}
	}

	graphs, err := s.graphs(group)
	if err != nil {
		return nil, err
	}

	var source aggregate.GraphSource = aggregate.ThresholdSource{}
	if req.Random {
		substitutes, err := s.swapGraphs(group, req.Degree)
		if err != nil {
			return nil, err
		}
		source = aggregate.SubstituteSource{Graphs: substitutes}
	}

	label := group.String()
	if req.Random {
		label += " (edge swap)"
	}

	run, err := s.aggregator.Aggregate(ctx, graphs, aggregate.Options{
		MotifSize: req.MotifSize,
		Degree:    req.Degree,
		Source:    source,
		Strict:    s.opts.Strict,
		Label:     label,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", label, err)
	}

	if s.cache != nil {
		if err := s.cache.Put(key, run.Distribution); err != nil {
			s.logger.Warn().Err(err).Str("group", label).Msg("Failed to cache distribution")
		}
	}

	return &FindResult{Key: key, Distribution: run.Distribution, Run: run}, nil
}

// graphs resolves the weighted graphs of a group
func (s *MotifService) graphs(group models.GroupKey) ([]mat.Matrix, error) {
	if group != dataset.RandomKey {
		return s.dataset.Group(group)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.random == nil {
		s.random = dataset.RandomGroup(s.opts.RandomGraphs, s.opts.RandomNodes, s.opts.RandomSeed)
		s.logger.Info().
			Int("graphs", s.opts.RandomGraphs).
			Int("nodes", s.opts.RandomNodes).
			Msg("Generated random control group")
	}
	return s.random, nil
}

// SetSwapData registers swap data for its degree, replacing any loaded file
func (s *MotifService) SetSwapData(data *dataset.SwapData) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.swapData[data.Degree] = data
}

// swapGraphs returns the edge-swapped graphs of a group at degree, loading
// the swap data file for that degree on first use
func (s *MotifService) swapGraphs(group models.GroupKey, degree float64) ([]*digraph.Digraph, error) {
	s.mutex.Lock()
	data, ok := s.swapData[degree]
	if !ok {
		path := dataset.SwapPath(s.opts.SwapDir, degree)
		loaded, err := dataset.LoadSwapData(path)
		if err != nil {
			s.mutex.Unlock()
			return nil, errs.InvalidConfiguration("find", "edge swap needs swap data for degree %v: %v", degree, err)
		}
		s.logger.Info().Str("path", path).Msg("Loaded swap data")
		s.swapData[degree] = loaded
		data = loaded
	}
	s.mutex.Unlock()

	graphs, err := data.Graphs(group)
	if err != nil {
		return nil, errs.InvalidConfiguration("find", "%v", err)
	}
	return graphs, nil
}
