// Package config manages the motif pipeline configuration using Viper.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
)

// EnvPrefix prefixes environment overrides, e.g. MOTIFS_MOTIF_SIZE
const EnvPrefix = "MOTIFS"

// Config manages pipeline configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Motif parameters
	v.SetDefault("motif.size", 3)
	v.SetDefault("motif.degree", 10.0)

	// Census oracle
	v.SetDefault("oracle.mode", "native")
	v.SetDefault("oracle.path", "./Kavosh")
	v.SetDefault("oracle.transport", "workdir")
	v.SetDefault("oracle.timeout", 10*time.Minute)
	v.SetDefault("aggregate.strict", false)

	// Result cache
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.sqlite_path", "cache/motifs.db")
	v.SetDefault("cache.memory_entries", 128)

	// Data
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.random_graphs", 100)
	v.SetDefault("dataset.random_nodes", 88)
	v.SetDefault("dataset.seed", 1)
	v.SetDefault("swap.iterations", 2500)
	v.SetDefault("swap.dir", ".")
	v.SetDefault("swap.seed", 1)

	// Comparison run
	v.SetDefault("compare.parallel", 4)
	v.SetDefault("compare.cohorts", []string{"NL", "MCI", "AD", "CONVERT"})
	v.SetDefault("compare.metrics", []string{"corr", "lcorr", "lacorr"})
	v.SetDefault("compare.top", 10)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Viper exposes the underlying store for flag binding
func (c *Config) Viper() *viper.Viper { return c.v }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Getters for motif parameters
func (c *Config) MotifSize() int { return c.v.GetInt("motif.size") }
func (c *Config) Degree() float64 { return c.v.GetFloat64("motif.degree") }

// Getters for the census oracle
func (c *Config) OracleMode() string { return c.v.GetString("oracle.mode") }
func (c *Config) OraclePath() string { return c.v.GetString("oracle.path") }
func (c *Config) OracleTransport() string { return c.v.GetString("oracle.transport") }
func (c *Config) OracleTimeout() time.Duration { return c.v.GetDuration("oracle.timeout") }
func (c *Config) Strict() bool { return c.v.GetBool("aggregate.strict") }

func (c *Config) CacheEnabled() bool { return c.v.GetBool("cache.enabled") }
func (c *Config) CacheBackend() string { return c.v.GetString("cache.backend") }
func (c *Config) CacheDir() string { return c.v.GetString("cache.dir") }
func (c *Config) CacheSQLitePath() string { return c.v.GetString("cache.sqlite_path") }
func (c *Config) CacheMemoryEntries() int { return c.v.GetInt("cache.memory_entries") }

func (c *Config) DatasetPath() string { return c.v.GetString("dataset.path") }
func (c *Config) RandomGraphs() int { return c.v.GetInt("dataset.random_graphs") }
func (c *Config) RandomNodes() int { return c.v.GetInt("dataset.random_nodes") }
func (c *Config) DatasetSeed() uint64 { return c.v.GetUint64("dataset.seed") }
func (c *Config) SwapIterations() int { return c.v.GetInt("swap.iterations") }
func (c *Config) SwapDir() string { return c.v.GetString("swap.dir") }
func (c *Config) SwapSeed() uint64 { return c.v.GetUint64("swap.seed") }

func (c *Config) CompareParallel() int { return c.v.GetInt("compare.parallel") }
func (c *Config) CompareCohorts() []string { return c.v.GetStringSlice("compare.cohorts") }
func (c *Config) CompareMetrics() []string { return c.v.GetStringSlice("compare.metrics") }
func (c *Config) CompareTop() int { return c.v.GetInt("compare.top") }

func (c *Config) ServerAddress() string { return c.v.GetString("server.address") }
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// Validate checks values that cannot be fixed up later
func (c *Config) Validate() error {
	if c.MotifSize() < 2 {
		return errs.InvalidConfiguration("config", "motif.size must be at least 2, got %d", c.MotifSize())
	}
	if c.Degree() <= 0 {
		return errs.InvalidConfiguration("config", "motif.degree must be positive, got %v", c.Degree())
	}
	switch c.OracleMode() {
	case "native", "process":
	default:
		return errs.InvalidConfiguration("config", "unknown oracle.mode %q", c.OracleMode())
	}
	if c.OracleTimeout() <= 0 {
		return errs.InvalidConfiguration("config", "oracle.timeout must be positive, got %v", c.OracleTimeout())
	}
	switch c.CacheBackend() {
	case "file", "sqlite":
	default:
		return errs.InvalidConfiguration("config", "unknown cache.backend %q", c.CacheBackend())
	}
	if c.CompareParallel() < 1 {
		return errs.InvalidConfiguration("config", "compare.parallel must be at least 1, got %d", c.CompareParallel())
	}
	return nil
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "motifs").Logger()
}
