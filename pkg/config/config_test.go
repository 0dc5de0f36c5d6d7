package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
)

func TestDefaults(t *testing.T) {
	c := NewConfig()

	assert.Equal(t, 3, c.MotifSize())
	assert.Equal(t, 10.0, c.Degree())
	assert.Equal(t, "native", c.OracleMode())
	assert.Equal(t, "workdir", c.OracleTransport())
	assert.Equal(t, 10*time.Minute, c.OracleTimeout())
	assert.False(t, c.CacheEnabled())
	assert.Equal(t, "file", c.CacheBackend())
	assert.Equal(t, 128, c.CacheMemoryEntries())
	assert.Equal(t, 100, c.RandomGraphs())
	assert.Equal(t, 88, c.RandomNodes())
	assert.Equal(t, 2500, c.SwapIterations())
	assert.Equal(t, []string{"NL", "MCI", "AD", "CONVERT"}, c.CompareCohorts())
	assert.Equal(t, ":8080", c.ServerAddress())
	assert.NoError(t, c.Validate())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MOTIFS_MOTIF_SIZE", "4")
	t.Setenv("MOTIFS_CACHE_ENABLED", "true")
	t.Setenv("MOTIFS_ORACLE_TIMEOUT", "30s")

	c := NewConfig()
	assert.Equal(t, 4, c.MotifSize())
	assert.True(t, c.CacheEnabled())
	assert.Equal(t, 30*time.Second, c.OracleTimeout())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motifs.yaml")
	doc := `
motif:
  size: 5
  degree: 2.5
oracle:
  mode: process
  path: /opt/kavosh/Kavosh
cache:
  enabled: true
  backend: sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c := NewConfig()
	require.NoError(t, c.LoadFromFile(path))

	assert.Equal(t, 5, c.MotifSize())
	assert.Equal(t, 2.5, c.Degree())
	assert.Equal(t, "process", c.OracleMode())
	assert.Equal(t, "/opt/kavosh/Kavosh", c.OraclePath())
	assert.Equal(t, "sqlite", c.CacheBackend())
	// Untouched keys keep their defaults
	assert.Equal(t, "workdir", c.OracleTransport())
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
	}{
		{"motif.size", 1},
		{"motif.degree", 0},
		{"oracle.mode", "remote"},
		{"oracle.timeout", "0s"},
		{"cache.backend", "redis"},
		{"compare.parallel", 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c := NewConfig()
			c.Set(tt.key, tt.value)
			assert.ErrorIs(t, c.Validate(), errs.ErrInvalidConfiguration)
		})
	}
}

func TestCreateLogger(t *testing.T) {
	c := NewConfig()
	c.Set("logging.level", "debug")
	assert.Equal(t, zerolog.DebugLevel, c.CreateLogger().GetLevel())

	c.Set("logging.level", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, c.CreateLogger().GetLevel())
}
