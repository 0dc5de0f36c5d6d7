package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupKey(t *testing.T) {
	key, err := ParseGroupKey("AD/lcorr")
	require.NoError(t, err)
	assert.Equal(t, GroupKey{Cohort: "AD", Metric: "lcorr"}, key)
	assert.Equal(t, "AD/lcorr", key.String())

	for _, label := range []string{"", "AD", "AD/", "/corr"} {
		_, err := ParseGroupKey(label)
		assert.Error(t, err, label)
	}
}

func TestCensusFrequencies(t *testing.T) {
	c := Census{Total: 4, Patterns: []PatternCount{{ID: 6, Occurrences: 3}, {ID: 14, Occurrences: 1}}}
	assert.Equal(t, map[int]float64{6: 0.75, 14: 0.25}, c.Frequencies())

	empty := Census{}
	assert.Empty(t, empty.Frequencies())
}

func TestDistribution(t *testing.T) {
	d := Distribution{14: {0.5, 0}, 6: {0.5, 1}}
	assert.Equal(t, []int{6, 14}, d.Patterns())
	assert.Equal(t, 2, d.Slots())

	clone := d.Clone()
	clone[6][0] = 9
	assert.Equal(t, 0.5, d[6][0])

	assert.Equal(t, 0, Distribution{}.Slots())
	assert.Equal(t, -1, Distribution{1: {1}, 2: {1, 2}}.Slots())
}
