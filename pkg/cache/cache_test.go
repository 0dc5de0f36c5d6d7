package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-motif-service/pkg/metrics"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

var adCorr = models.CacheKey{
	Group:     models.GroupKey{Cohort: "AD", Metric: "corr"},
	MotifSize: 3,
	Degree:    10,
}

func sampleDistribution() models.Distribution {
	return models.Distribution{
		6:  {0.1 + 0.2, 1.0 / 3, 0},
		25: {0.7, 2.0 / 3, 1e-17},
	}
}

type storeFactory struct {
	name string
	open func(t *testing.T) Store
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{"File", func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "cache"))
			require.NoError(t, err)
			return s
		}},
		{"SQLite", func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache", "motifs.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		}},
	}
}

func TestFingerprint(t *testing.T) {
	name, id := Fingerprint(adCorr)
	assert.Equal(t, "AD_corr-s3-d10", name)

	_, again := Fingerprint(adCorr)
	assert.Equal(t, id, again)

	random := adCorr
	random.Random = true
	randName, randID := Fingerprint(random)
	assert.Equal(t, "RAND-AD_corr-s3-d10", randName)
	assert.NotEqual(t, id, randID)

	fractional := adCorr
	fractional.Degree = 2.5
	fracName, _ := Fingerprint(fractional)
	assert.Equal(t, "AD_corr-s3-d2.5", fracName)
}

func TestFingerprintUnderscoreLabels(t *testing.T) {
	a := models.CacheKey{Group: models.GroupKey{Cohort: "A_B", Metric: "corr"}, MotifSize: 3, Degree: 10}
	b := models.CacheKey{Group: models.GroupKey{Cohort: "A", Metric: "B_corr"}, MotifSize: 3, Degree: 10}

	nameA, idA := Fingerprint(a)
	nameB, idB := Fingerprint(b)
	assert.Equal(t, nameA, nameB, "readable names collide")
	assert.NotEqual(t, idA, idB)

	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			c, err := New(f.open(t), Options{Enabled: true}, nil, zerolog.Nop())
			require.NoError(t, err)

			require.NoError(t, c.Put(a, models.Distribution{6: {1}}))
			require.NoError(t, c.Put(b, models.Distribution{25: {1}}))

			got, ok := c.Get(a)
			require.True(t, ok)
			assert.Equal(t, models.Distribution{6: {1}}, got)

			got, ok = c.Get(b)
			require.True(t, ok)
			assert.Equal(t, models.Distribution{25: {1}}, got)
		})
	}
}

func TestConcurrentPut(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			c, err := New(f.open(t), Options{Enabled: true}, nil, zerolog.Nop())
			require.NoError(t, err)

			const workers, rounds = 8, 20
			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				failed []error
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for r := 0; r < rounds; r++ {
						key := adCorr
						key.Group.Cohort = fmt.Sprintf("C%d", w)
						key.MotifSize = 3 + r%2
						if err := c.Put(key, sampleDistribution()); err != nil {
							mu.Lock()
							failed = append(failed, err)
							mu.Unlock()
						}
					}
				}(w)
			}
			wg.Wait()
			require.Empty(t, failed)

			for w := 0; w < workers; w++ {
				key := adCorr
				key.Group.Cohort = fmt.Sprintf("C%d", w)
				_, ok := c.Get(key)
				assert.True(t, ok, key.Group.Cohort)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			c, err := New(f.open(t), Options{Enabled: true}, nil, zerolog.Nop())
			require.NoError(t, err)

			_, ok := c.Get(adCorr)
			assert.False(t, ok)

			require.NoError(t, c.Put(adCorr, sampleDistribution()))

			got, ok := c.Get(adCorr)
			require.True(t, ok)
			assert.Equal(t, sampleDistribution(), got)

			// Same group under the other mode is a different entry
			random := adCorr
			random.Random = true
			_, ok = c.Get(random)
			assert.False(t, ok)
		})
	}
}

func TestOverwriteAndDelete(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			c, err := New(f.open(t), Options{Enabled: true}, nil, zerolog.Nop())
			require.NoError(t, err)

			require.NoError(t, c.Put(adCorr, sampleDistribution()))
			require.NoError(t, c.Put(adCorr, models.Distribution{3: {1}}))

			got, ok := c.Get(adCorr)
			require.True(t, ok)
			assert.Equal(t, models.Distribution{3: {1}}, got)

			require.NoError(t, c.Delete(adCorr))
			_, ok = c.Get(adCorr)
			assert.False(t, ok)

			// Deleting an absent key is fine
			assert.NoError(t, c.Delete(adCorr))
		})
	}
}

func TestEmptyDistribution(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			c, err := New(f.open(t), Options{Enabled: true}, nil, zerolog.Nop())
			require.NoError(t, err)

			require.NoError(t, c.Put(adCorr, models.Distribution{}))
			got, ok := c.Get(adCorr)
			require.True(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestDisabledCacheHasNoSideEffects(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	m := metrics.New()
	c, err := New(store, Options{Enabled: false, MemoryEntries: 8}, m, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Put(adCorr, sampleDistribution()))
	_, ok := c.Get(adCorr)
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("disabled")))
}

func TestCorruptFileIsMiss(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	m := metrics.New()
	c, err := New(store, Options{Enabled: true}, m, zerolog.Nop())
	require.NoError(t, err)

	_, id := Fingerprint(adCorr)
	require.NoError(t, os.WriteFile(store.path(id), []byte("{not json"), 0644))

	_, ok := c.Get(adCorr)
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("corrupt")))

	// A later Put repairs the entry
	require.NoError(t, c.Put(adCorr, sampleDistribution()))
	_, ok = c.Get(adCorr)
	assert.True(t, ok)
}

func TestRaggedFileIsCorrupt(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, id := Fingerprint(adCorr)
	doc := `{"id":"` + id + `","distribution":{"6":[0.5,0.5],"25":[1]}}`
	require.NoError(t, os.WriteFile(store.path(id), []byte(doc), 0644))

	_, err = store.Load(id)
	assert.Error(t, err)
}

func TestCorruptRowIsMiss(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "motifs.db"))
	require.NoError(t, err)
	defer store.Close()

	m := metrics.New()
	c, err := New(store, Options{Enabled: true}, m, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, c.Put(adCorr, sampleDistribution()))

	_, err = store.db.Exec("UPDATE motif_cache SET distribution = 'garbage'")
	require.NoError(t, err)

	_, ok := c.Get(adCorr)
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("corrupt")))
}

func TestMemoryTier(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	m := metrics.New()
	c, err := New(store, Options{Enabled: true, MemoryEntries: 4}, m, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, c.Put(adCorr, sampleDistribution()))

	// Served from memory once the file is gone
	_, id := Fingerprint(adCorr)
	require.NoError(t, os.Remove(store.path(id)))

	got, ok := c.Get(adCorr)
	require.True(t, ok)
	assert.Equal(t, sampleDistribution(), got)

	// Callers get their own copy
	got[6][0] = 42
	again, ok := c.Get(adCorr)
	require.True(t, ok)
	assert.Equal(t, sampleDistribution(), again)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, Options{Enabled: true}, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(nil, Options{MemoryEntries: -1}, nil, zerolog.Nop())
	assert.Error(t, err)

	c, err := New(nil, Options{}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestPutRejectsRaggedDistribution(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	c, err := New(store, Options{Enabled: true}, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, c.Put(adCorr, models.Distribution{1: {1, 2}, 2: {1}}))
}
