package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

func TestTTestInd(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		t, p float64
		tol  float64
	}{
		{"Shifted", []float64{1, 2, 3, 4, 5}, []float64{2, 3, 4, 5, 6}, -1, 0.3465935070873343, 1e-9},
		{"Separated", []float64{0.2, 0.4, 0.3, 0.5}, []float64{0.9, 0.8, 1.0, 0.7, 0.85}, -6.236095644623235, 0.00042990548, 1e-8},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0, 1, 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TTestInd(tt.a, tt.b)
			assert.InDelta(t, tt.t, got.Statistic, tt.tol)
			assert.InDelta(t, tt.p, got.PValue, tt.tol)
		})
	}
}

func TestTTestIndSymmetric(t *testing.T) {
	a := []float64{0.1, 0.3, 0.2, 0.25}
	b := []float64{0.4, 0.35, 0.5}

	ab, ba := TTestInd(a, b), TTestInd(b, a)
	assert.InDelta(t, -ab.Statistic, ba.Statistic, 1e-12)
	assert.InDelta(t, ab.PValue, ba.PValue, 1e-12)
	assert.Equal(t, "-", ab.Sign())
	assert.Equal(t, "+", ba.Sign())
}

func TestTTestIndDegenerate(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
	}{
		{"Empty", nil, []float64{1, 2}},
		{"SingleValues", []float64{1}, []float64{2}},
		{"NoSpread", []float64{0, 0, 0}, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TTestInd(tt.a, tt.b)
			assert.True(t, math.IsNaN(got.PValue))
			assert.Equal(t, LevelNone, got.Level())
		})
	}

	// Constant but different samples are infinitely far apart
	got := TTestInd([]float64{1, 1}, []float64{0, 0})
	assert.True(t, math.IsInf(got.Statistic, 1))
	assert.Zero(t, got.PValue)
}

func TestSignificance(t *testing.T) {
	assert.Equal(t, LevelStrong, Significance(0.001))
	assert.Equal(t, LevelStrong, Significance(0.01))
	assert.Equal(t, LevelModerate, Significance(0.05))
	assert.Equal(t, LevelWeak, Significance(0.07))
	assert.Equal(t, LevelNone, Significance(0.5))
	assert.Equal(t, LevelNone, Significance(math.NaN()))
}

func TestTTestJSONHandlesNaN(t *testing.T) {
	data, err := json.Marshal(TTest{Statistic: math.NaN(), PValue: math.NaN()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":null,"p":null,"sign":"-","level":"none"}`, string(data))

	data, err = json.Marshal(TTest{Statistic: 3, PValue: 0.004})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":3,"p":0.004,"sign":"+","level":"strong"}`, string(data))
}

func comparisonInput() (map[string]models.Distribution, map[string]models.Distribution) {
	groups := map[string]models.Distribution{
		"NL":  {6: {0.5, 0.6, 0.55}, 3: {0.1, 0.2, 0.15}, 25: {0.3, 0.2, 0.3}},
		"MCI": {6: {0.4, 0.5, 0.45}, 3: {0.2, 0.2, 0.25}, 25: {0.4, 0.3, 0.3}},
		"AD":  {6: {0.3, 0.35, 0.3}, 3: {0.3, 0.3, 0.35}},
	}
	controls := map[string]models.Distribution{
		"NL":  {6: {0.2, 0.25, 0.2}, 3: {0.5, 0.5, 0.45}, 25: {0.3, 0.25, 0.35}},
		"MCI": {6: {0.2, 0.25, 0.2}, 3: {0.5, 0.5, 0.45}, 25: {0.3, 0.25, 0.35}},
		"AD":  {6: {0.2, 0.25, 0.2}, 3: {0.5, 0.5, 0.45}, 25: {0.3, 0.25, 0.35}},
	}
	return groups, controls
}

func TestCompare(t *testing.T) {
	groups, controls := comparisonInput()

	table, err := Comparator{Groups: []string{"NL", "MCI", "AD"}}.Compare(groups, controls)
	require.NoError(t, err)

	names := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"NL to MCI", "NL to AD", "MCI to AD",
		"NL to Rand", "MCI to Rand", "AD to Rand",
	}, names)

	// Pattern 25 is missing from AD and is left out; rows follow NL's mean
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 6, table.Rows[0].Pattern)
	assert.Equal(t, 3, table.Rows[1].Pattern)
	assert.InDelta(t, 0.55, table.Rows[0].Mean, 1e-12)

	for _, row := range table.Rows {
		require.Len(t, row.Tests, len(table.Columns))
	}
	want := TTestInd(groups["NL"][6], groups["AD"][6])
	assert.Equal(t, want, table.Rows[0].Tests[1])
	wantRand := TTestInd(groups["AD"][3], controls["AD"][3])
	assert.Equal(t, wantRand, table.Rows[1].Tests[5])
}

func TestCompareWithoutControls(t *testing.T) {
	groups, _ := comparisonInput()

	table, err := Comparator{Groups: []string{"NL", "MCI"}}.Compare(groups, nil)
	require.NoError(t, err)
	require.Len(t, table.Columns, 1)
	assert.Len(t, table.Rows, 3)
}

func TestCompareMissingGroup(t *testing.T) {
	groups, controls := comparisonInput()

	_, err := Comparator{Groups: []string{"NL", "CONVERT"}}.Compare(groups, controls)
	assert.ErrorIs(t, err, errs.ErrDatasetMissing)

	_, err = Comparator{}.Compare(groups, controls)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func TestTableExport(t *testing.T) {
	groups, controls := comparisonInput()
	table, err := Comparator{Groups: []string{"NL", "AD"}}.Compare(groups, controls)
	require.NoError(t, err)

	var js bytes.Buffer
	require.NoError(t, table.WriteJSON(&js))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Len(t, decoded["rows"], 2)

	var ym bytes.Buffer
	require.NoError(t, table.WriteYAML(&ym))
	assert.True(t, strings.HasPrefix(ym.String(), "columns:"))

	var back Table
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, table.Columns, back.Columns)
	assert.Len(t, back.Rows, 2)
}

func TestSummary(t *testing.T) {
	dist := models.Distribution{
		3:  {1, 2, 3, 4},
		6:  {5, 5, 5, 5},
		25: {0, 0, 0, 0},
	}

	got := Summary(dist, 2)
	require.Len(t, got, 2)
	assert.Equal(t, PatternSummary{Pattern: 6, Mean: 5, Std: 0}, got[0])
	assert.Equal(t, 3, got[1].Pattern)
	assert.InDelta(t, 2.5, got[1].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), got[1].Std, 1e-12)

	assert.Len(t, Summary(dist, 0), 3)
}

func TestProfile(t *testing.T) {
	dist := models.Distribution{6: {0.5, 0.5}}
	got := Profile(dist, []int{6, 25})
	assert.Equal(t, []PatternSummary{{Pattern: 6, Mean: 0.5}, {Pattern: 25}}, got)
}
