package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/graph-motif-service/pkg/aggregate"
	"github.com/gilchrisn/graph-motif-service/pkg/cache"
	"github.com/gilchrisn/graph-motif-service/pkg/dataset"
	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/metrics"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
	"github.com/gilchrisn/graph-motif-service/pkg/oracle"
	"github.com/gilchrisn/graph-motif-service/pkg/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T) (*mux.Router, *metrics.Metrics) {
	t.Helper()

	d := dataset.New()
	d.Add(models.GroupKey{Cohort: "AD", Metric: "corr"}, []mat.Matrix{mat.NewDense(4, 4, []float64{
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
		0, 0, 0, 0,
	})})
	d.Add(models.GroupKey{Cohort: "NL", Metric: "corr"}, dataset.RandomGroup(3, 8, 21))

	m := metrics.New()
	store, err := cache.NewFileStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	rc, err := cache.New(store, cache.Options{Enabled: true}, m, zerolog.Nop())
	require.NoError(t, err)

	svc := service.New(service.Options{
		Dataset:      d,
		Aggregator:   aggregate.New(oracle.WithMetrics(oracle.NewNativeOracle(), oracle.ModeNative, m), m, zerolog.Nop()),
		Cache:        rc,
		SwapDir:      t.TempDir(),
		RandomGraphs: 3,
		RandomNodes:  8,
		RandomSeed:   1,
	}, zerolog.Nop())

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)
	SetupRoutes(router, NewHandlers(svc, Defaults{MotifSize: 3, Degree: 0.75}), m.Registry())
	return router, m
}

func do(t *testing.T, router http.Handler, method, target string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthAndGroups(t *testing.T) {
	router, _ := newRouter(t)

	rec, env := do(t, router, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = do(t, router, "GET", "/api/v1/groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []models.GroupKey
	require.NoError(t, json.Unmarshal(env.Data, &groups))
	assert.Equal(t, []models.GroupKey{{Cohort: "AD", Metric: "corr"}, {Cohort: "NL", Metric: "corr"}}, groups)
}

func TestFindMotifs(t *testing.T) {
	router, _ := newRouter(t)

	rec, env := do(t, router, "GET", "/api/v1/groups/AD/corr/motifs?size=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var result struct {
		Distribution map[string][]float64 `json:"distribution"`
		Cached       bool                 `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, map[string][]float64{"6": {1}}, result.Distribution)
	assert.False(t, result.Cached)

	_, env = do(t, router, "GET", "/api/v1/groups/AD/corr/motifs?size=3", nil)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Cached)
}

func TestFindMotifsErrors(t *testing.T) {
	router, _ := newRouter(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown group", "/api/v1/groups/CONVERT/corr/motifs", http.StatusNotFound},
		{"bad size", "/api/v1/groups/AD/corr/motifs?size=three", http.StatusBadRequest},
		{"size too small", "/api/v1/groups/AD/corr/motifs?size=1", http.StatusBadRequest},
		{"bad degree", "/api/v1/groups/AD/corr/motifs?degree=-1", http.StatusBadRequest},
		{"bad random", "/api/v1/groups/AD/corr/motifs?random=maybe", http.StatusBadRequest},
		{"no swap data", "/api/v1/groups/AD/corr/motifs?random=true", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, router, "GET", tt.target, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestCreateComparison(t *testing.T) {
	router, _ := newRouter(t)

	body := []byte(`{"metrics":["corr"],"cohorts":["NL"],"size":3,"degree":2}`)
	rec, env := do(t, router, "POST", "/api/v1/comparisons", body)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var report service.Report
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.NotEmpty(t, report.ID)
	require.Len(t, report.Tables, 1)
	require.Len(t, report.Tables[0].Table.Columns, 1)
	assert.Equal(t, "NL to Rand", report.Tables[0].Table.Columns[0].Name)

	rec, _ = do(t, router, "POST", "/api/v1/comparisons", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, "POST", "/api/v1/comparisons", []byte(`{"metrics":["corr"],"cohorts":["MCI"],"size":3,"degree":2}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPattern(t *testing.T) {
	router, _ := newRouter(t)

	rec, env := do(t, router, "GET", "/api/v1/patterns/25?size=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pattern struct {
		Edges []struct{ From, To int } `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pattern))
	assert.Len(t, pattern.Edges, 3)

	rec, _ = do(t, router, "GET", "/api/v1/patterns/64?size=3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newRouter(t)
	do(t, router, "GET", "/api/v1/groups/AD/corr/motifs", nil)

	rec, _ := do(t, router, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "motifs_oracle_invocations_total")
	assert.Contains(t, rec.Body.String(), "motifs_cache_lookups_total")
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newRouter(t)

	rec, _ := do(t, router, "OPTIONS", "/api/v1/comparisons", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec, env := do(t, handler, "GET", "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(errs.DatasetMissing("find", "AD/corr")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(errs.InvalidConfiguration("find", "bad")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errs.OracleFailure("census", assert.AnError)))
}
