// Package stats compares motif frequency distributions between groups.
package stats

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTest is the outcome of a two-sample t-test
type TTest struct {
	Statistic float64 `yaml:"t"`
	PValue    float64 `yaml:"p"`
}

// TTestInd runs Student's two-sample t-test with pooled variance and
// returns the two-sided p-value. Samples too small or without spread to
// test yield NaN.
func TTestInd(a, b []float64) TTest {
	n1, n2 := float64(len(a)), float64(len(b))
	df := n1 + n2 - 2
	if len(a) == 0 || len(b) == 0 || df < 1 {
		return TTest{Statistic: math.NaN(), PValue: math.NaN()}
	}

	m1, m2 := stat.Mean(a, nil), stat.Mean(b, nil)
	var v1, v2 float64
	if len(a) > 1 {
		v1 = stat.Variance(a, nil)
	}
	if len(b) > 1 {
		v2 = stat.Variance(b, nil)
	}

	pooled := ((n1-1)*v1 + (n2-1)*v2) / df
	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	diff := m1 - m2

	if se == 0 {
		if diff == 0 {
			return TTest{Statistic: math.NaN(), PValue: math.NaN()}
		}
		return TTest{Statistic: math.Copysign(math.Inf(1), diff), PValue: 0}
	}

	t := diff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return TTest{Statistic: t, PValue: math.Min(1, 2*dist.Survival(math.Abs(t)))}
}

// Sign returns "+" when the first sample's mean is larger, "-" otherwise
func (t TTest) Sign() string {
	if t.Statistic > 0 {
		return "+"
	}
	return "-"
}

// Level returns the significance band of the p-value
func (t TTest) Level() Level {
	return Significance(t.PValue)
}

// MarshalJSON encodes untestable results as nulls
func (t TTest) MarshalJSON() ([]byte, error) {
	type wire struct {
		Statistic *float64 `json:"t"`
		PValue    *float64 `json:"p"`
		Sign      string   `json:"sign"`
		Level     Level    `json:"level"`
	}
	return json.Marshal(wire{
		Statistic: finite(t.Statistic),
		PValue:    finite(t.PValue),
		Sign:      t.Sign(),
		Level:     t.Level(),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Level is a significance band
type Level string

const (
	LevelStrong   Level = "strong"   // p <= 0.01
	LevelModerate Level = "moderate" // p <= 0.05
	LevelWeak     Level = "weak"     // p <= 0.1
	LevelNone     Level = "none"
)

// Significance classifies a p-value
func Significance(p float64) Level {
	switch {
	case math.IsNaN(p):
		return LevelNone
	case p <= 0.01:
		return LevelStrong
	case p <= 0.05:
		return LevelModerate
	case p <= 0.1:
		return LevelWeak
	default:
		return LevelNone
	}
}
