package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosubgroup/domain/dataset"
)

func TestAnalyzeDistribution(t *testing.T) {
	d, err := AnalyzeDistribution([]float64{1, 2, 3, 4, 100})
	require.NoError(t, err)
	assert.InDelta(t, 22, d.Mean, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 100.0, d.Max)
	assert.Equal(t, 3.0, d.Median)
	assert.Equal(t, 1, d.Outliers)
	assert.Greater(t, d.Skewness, 0.0)

	flat, err := AnalyzeDistribution([]float64{5, 5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, flat.StdDev)
	assert.Equal(t, 0.0, flat.Skewness)
	assert.Equal(t, 0.0, flat.Kurtosis)

	_, err = AnalyzeDistribution(nil)
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	table, err := dataset.NewTable("t",
		dataset.NewFloatColumn("x", []float64{1, 2, math.NaN(), 4}),
		dataset.NewCategoricalColumn("c", []string{"a", "b", "a", "a"}),
		dataset.NewCategoricalColumn("y", []string{"yes", "no", "no", "yes"}),
		dataset.NewBoolColumn("flag", []bool{true, true, true, true}),
	)
	require.NoError(t, err)

	p, err := Profile(table)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Rows)
	require.Len(t, p.Columns, 4)

	x := p.Columns[0]
	assert.Equal(t, 1, x.Missing)
	assert.Equal(t, 3, x.Distinct)
	require.NotNil(t, x.Distribution)
	assert.InDelta(t, 7.0/3, x.Distribution.Mean, 1e-12)
	assert.False(t, x.CandidateTarget)

	c := p.Columns[1]
	assert.Nil(t, c.Distribution)
	assert.Equal(t, []ValueCount{{"a", 3}, {"b", 1}}, c.Top)
	assert.False(t, c.CandidateTarget, "a/b is not a binary coding")

	y := p.Columns[2]
	assert.True(t, y.CandidateTarget)
	assert.InDelta(t, 0.5, y.PositiveRate, 1e-12)

	flag := p.Columns[3]
	assert.True(t, flag.CandidateTarget)
	assert.Equal(t, 1.0, flag.PositiveRate)
}

func TestTopValues_Caps(t *testing.T) {
	counts := map[string]int{"a": 1, "b": 5, "c": 5, "d": 2, "e": 1, "f": 1}
	top := topValues(counts, 3)
	assert.Equal(t, []ValueCount{{"b", 5}, {"c", 5}, {"d", 2}}, top)
}
