package quality

import (
	"math"
	"testing"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/subgroup"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tenRows has target=1 on every odd row; "odd == 'yes'" selects exactly those.
func tenRows(t *testing.T) *dataset.Table {
	t.Helper()
	odd := make([]string, 10)
	target := make([]int64, 10)
	for i := range odd {
		odd[i] = "no"
		if i%2 == 1 {
			odd[i] = "yes"
			target[i] = 1
		}
	}
	table, err := dataset.NewTable("ten",
		dataset.NewCategoricalColumn("odd", odd),
		dataset.NewIntColumn("target", target),
	)
	require.NoError(t, err)
	return table
}

func TestEvalQuality_WRAccOnPerfectSubgroup(t *testing.T) {
	table := tenRows(t)
	q, err := EvalQuality(subgroup.NewDescription(subgroup.Equal("odd", "yes")), table, "target")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, q, 1e-12)

	q, err = EvalQuality(subgroup.NewDescription(subgroup.Equal("odd", "no")), table, "target")
	require.NoError(t, err)
	assert.InDelta(t, -0.25, q, 1e-12)

	q, err = EvalQuality(subgroup.CatchAll(), table, "target")
	require.NoError(t, err)
	assert.InDelta(t, 0, q, 1e-12, "the whole table has no deviation from itself")
}

func TestEvalQuality_EmptySubgroupIsDegenerate(t *testing.T) {
	table := tenRows(t)
	empty := subgroup.NewDescription(subgroup.Equal("odd", "yes"), subgroup.Equal("odd", "no"))
	_, err := EvalQuality(empty, table, "target")
	assert.ErrorIs(t, err, core.ErrDegenerateSubgroup)
	assert.True(t, core.IsPreconditionError(err))
}

func TestEvalQuality_InvalidTarget(t *testing.T) {
	_, err := EvalQuality(subgroup.CatchAll(), tenRows(t), "odd")
	assert.ErrorIs(t, err, core.ErrInvalidTarget)
}

func TestSatisfiesAll_CeilingThreshold(t *testing.T) {
	for _, n := range []int{10, 49, 50, 51, 100, 149, 250} {
		x := make([]float64, n)
		for i := range x {
			x[i] = float64(i)
		}
		table, err := dataset.NewTable("ramp", dataset.NewFloatColumn("x", x))
		require.NoError(t, err)

		need := int(math.Ceil(DefaultMinCoverage * float64(n)))
		for size := 0; size <= need+1 && size <= n; size++ {
			// x <= size-0.5 matches exactly size rows
			d := subgroup.NewDescription(subgroup.LessEqual("x", float64(size)-0.5))
			ok, err := SatisfiesAll(d, table, DefaultMinCoverage)
			require.NoError(t, err)
			assert.Equal(t, size >= need, ok, "n=%d size=%d need=%d", n, size, need)
		}
	}
}

func TestStandard_Exponent(t *testing.T) {
	c := Coverage{Size: 4, Positives: 3, Total: 16, TotalPositives: 4}

	wracc, err := WRAcc.Evaluate(c)
	require.NoError(t, err)
	assert.InDelta(t, 0.25*(0.75-0.25), wracc, 1e-12)

	half, err := Standard{A: 0.5}.Evaluate(c)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*(0.75-0.25), half, 1e-12)

	assert.Equal(t, "wracc", WRAcc.Name())
	assert.Equal(t, "standard(a=0.5)", Standard{A: 0.5}.Name())
}

func TestStandard_OptimisticEstimateBoundsSpecialisations(t *testing.T) {
	c := Coverage{Size: 8, Positives: 3, Total: 20, TotalPositives: 5}
	oe := WRAcc.OptimisticEstimate(c)

	// Every sub-subgroup with s rows and p positives
	for size := 1; size <= c.Size; size++ {
		for pos := 0; pos <= c.Positives && pos <= size; pos++ {
			q, err := WRAcc.Evaluate(Coverage{Size: size, Positives: pos, Total: 20, TotalPositives: 5})
			require.NoError(t, err)
			assert.LessOrEqual(t, q, oe+1e-12)
		}
	}
}

func TestEvaluator_Cover(t *testing.T) {
	table := tenRows(t)
	e, err := NewEvaluator(table, "target", nil)
	require.NoError(t, err)
	assert.Equal(t, "wracc", e.Function().Name())

	c, err := e.Cover(subgroup.NewDescription(subgroup.Equal("odd", "yes")))
	require.NoError(t, err)
	assert.Equal(t, Coverage{Size: 5, Positives: 5, Total: 10, TotalPositives: 5}, c)
	assert.InDelta(t, 1.0, c.Rate(), 1e-12)
	assert.InDelta(t, 0.5, c.BaseRate(), 1e-12)
	assert.True(t, Satisfies(c, DefaultMinCoverage))
}

func TestParseFunction(t *testing.T) {
	fn, err := ParseFunction("standard", 2)
	require.NoError(t, err)
	assert.Equal(t, Standard{A: 2}, fn)

	_, err = ParseFunction("chi2", 0)
	assert.ErrorIs(t, err, core.ErrInvalidOption)
}
