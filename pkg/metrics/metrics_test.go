package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOracle(t *testing.T) {
	m := New()

	m.ObserveOracle("native", 10*time.Millisecond, nil)
	m.ObserveOracle("native", 10*time.Millisecond, nil)
	m.ObserveOracle("process", time.Second, errors.New("exit 1"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OracleInvocations.WithLabelValues("native", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleInvocations.WithLabelValues("process", "failure")))
}

func TestGroupCounters(t *testing.T) {
	m := New()

	m.GraphProcessed("AD/corr")
	m.GraphRejected("AD/corr", "sparse")
	m.GraphRejected("AD/corr", "sparse")
	m.CacheLookup("hit")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphsProcessed.WithLabelValues("AD/corr")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GraphsRejected.WithLabelValues("AD/corr", "sparse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestRegistryGathers(t *testing.T) {
	m := New()
	m.CacheLookup("miss")

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["motifs_cache_lookups_total"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOracle("native", time.Millisecond, nil)
		m.GraphProcessed("x")
		m.GraphRejected("x", "sparse")
		m.CacheLookup("hit")
	})
}
