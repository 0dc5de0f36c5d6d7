package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/graph-motif-service/pkg/aggregate"
	"github.com/gilchrisn/graph-motif-service/pkg/cache"
	"github.com/gilchrisn/graph-motif-service/pkg/config"
	"github.com/gilchrisn/graph-motif-service/pkg/dataset"
	"github.com/gilchrisn/graph-motif-service/pkg/metrics"
	"github.com/gilchrisn/graph-motif-service/pkg/oracle"
)

// FromConfig wires a MotifService from configuration. The caller must Close
// the returned service.
func FromConfig(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*MotifService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o, err := NewOracle(cfg, m, logger)
	if err != nil {
		return nil, err
	}

	rc, err := NewCache(cfg, m, logger)
	if err != nil {
		return nil, err
	}

	ds := dataset.New()
	if path := cfg.DatasetPath(); path != "" {
		ds, err = dataset.Load(path)
		if err != nil {
			rc.Close()
			return nil, err
		}
		logger.Info().Str("path", path).Int("groups", len(ds.Keys())).Msg("Loaded dataset")
	}

	return New(Options{
		Dataset:      ds,
		Aggregator:   aggregate.New(o, m, logger),
		Cache:        rc,
		SwapDir:      cfg.SwapDir(),
		RandomGraphs: cfg.RandomGraphs(),
		RandomNodes:  cfg.RandomNodes(),
		RandomSeed:   cfg.DatasetSeed(),
		Strict:       cfg.Strict(),
		Parallel:     cfg.CompareParallel(),
	}, logger), nil
}

// NewOracle builds the census oracle selected by oracle.mode, instrumented
// with m
func NewOracle(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (oracle.Oracle, error) {
	var o oracle.Oracle

	mode := oracle.Mode(cfg.OracleMode())
	switch mode {
	case oracle.ModeNative:
		o = oracle.NewNativeOracle()
	case oracle.ModeProcess:
		p, err := oracle.NewProcessOracle(oracle.ProcessConfig{
			Path:      cfg.OraclePath(),
			Transport: oracle.Transport(cfg.OracleTransport()),
			Timeout:   cfg.OracleTimeout(),
		}, logger)
		if err != nil {
			return nil, err
		}
		o = p
	default:
		return nil, fmt.Errorf("unknown oracle mode: %s", mode)
	}

	logger.Info().Str("mode", string(mode)).Msg("Census oracle ready")
	return oracle.WithMetrics(o, mode, m), nil
}

// NewCache builds the result cache selected by cache.backend
func NewCache(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*cache.ResultCache, error) {
	opts := cache.Options{
		Enabled:       cfg.CacheEnabled(),
		MemoryEntries: cfg.CacheMemoryEntries(),
	}
	if !opts.Enabled {
		return cache.New(nil, opts, m, logger)
	}

	var (
		store cache.Store
		err   error
	)
	switch cfg.CacheBackend() {
	case "sqlite":
		store, err = cache.NewSQLiteStore(cfg.CacheSQLitePath())
	default:
		store, err = cache.NewFileStore(cfg.CacheDir())
	}
	if err != nil {
		return nil, err
	}
	return cache.New(store, opts, m, logger)
}

// Close releases the resources held by the service
func (s *MotifService) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}
