package refine

import (
	"testing"
	"time"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/subgroup"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, seed subgroup.Description, table *dataset.Table, features []string, cfg Config) []string {
	t.Helper()
	seq, err := Refinements(seed, table, features, cfg)
	require.NoError(t, err)
	var out []string
	for d := range seq {
		out = append(out, d.String())
	}
	return out
}

func mixedTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable("mixed",
		dataset.NewFloatColumn("x", []float64{1, 2, 3, 4, 5}),
		dataset.NewIntColumn("n", []int64{10, 10, 20, 20, 30}),
		dataset.NewCategoricalColumn("color", []string{"red", "blue", "red", "", "green"}).WithMissing(3),
		dataset.NewBoolColumn("flag", []bool{true, false, true, true, false}),
		dataset.NewTimeColumn("seen", make([]time.Time, 5)),
	)
	require.NoError(t, err)
	return table
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 5.0, Percentile(sorted, 100))
	assert.Equal(t, 3.0, Percentile(sorted, 50))
	assert.InDelta(t, 2.3333333333, Percentile(sorted, 100.0/3), 1e-9)
	assert.Equal(t, 2.0, Percentile(sorted, 25))
	assert.InDelta(t, 1.8, Percentile(sorted, 20), 1e-12)
	assert.Equal(t, 7.0, Percentile([]float64{7}, 40))
	assert.True(t, Percentile(nil, 50) != Percentile(nil, 50), "empty input yields NaN")
}

func TestSchedule_Targets(t *testing.T) {
	assert.Equal(t, []float64{100, 50, 100.0 / 3, 25, 20}, Reciprocal.Targets(5))
	assert.Equal(t, []float64{20, 40, 60, 80}, Even.Targets(4))
}

func TestRefinements_NumericReciprocalCuts(t *testing.T) {
	got := collect(t, subgroup.CatchAll(), mixedTable(t), []string{"x"}, Config{Chunks: 3})
	assert.Equal(t, []string{
		"x <= 5", "x > 5",
		"x <= 3", "x > 3",
		"x <= 2.3333333333333335", "x > 2.3333333333333335",
	}, got)
}

func TestRefinements_IntegerColumn(t *testing.T) {
	got := collect(t, subgroup.CatchAll(), mixedTable(t), []string{"n"}, Config{Chunks: 2})
	assert.Equal(t, []string{"n <= 30", "n > 30", "n <= 20", "n > 20"}, got)
}

func TestRefinements_NominalFirstAppearanceOrder(t *testing.T) {
	got := collect(t, subgroup.CatchAll(), mixedTable(t), []string{"color", "flag"}, DefaultConfig())
	assert.Equal(t, []string{
		"color == 'red'", "color != 'red'",
		"color == 'blue'", "color != 'blue'",
		"color == 'green'", "color != 'green'",
		"flag == 'true'", "flag != 'true'",
		"flag == 'false'", "flag != 'false'",
	}, got)
}

func TestRefinements_RestrictsToSeedSubset(t *testing.T) {
	seed := subgroup.NewDescription(subgroup.Equal("flag", "false"))
	got := collect(t, seed, mixedTable(t), []string{"color"}, DefaultConfig())
	assert.Equal(t, []string{
		"flag == 'false' and color == 'blue'", "flag == 'false' and color != 'blue'",
		"flag == 'false' and color == 'green'", "flag == 'false' and color != 'green'",
	}, got)
}

func TestRefinements_SkipsPredicatesInSeed(t *testing.T) {
	seed := subgroup.NewDescription(subgroup.Equal("flag", "true"))
	got := collect(t, seed, mixedTable(t), []string{"flag"}, DefaultConfig())
	// The seed only holds flag == true rows, so the only new predicate is its negation
	assert.Equal(t, []string{"flag == 'true' and flag != 'true'"}, got)
}

func TestRefinements_NoDuplicatePredicates(t *testing.T) {
	// Constant column: every percentile is the same cut point
	table, err := dataset.NewTable("const", dataset.NewFloatColumn("c", []float64{4, 4, 4, 4}))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got := collect(t, subgroup.CatchAll(), table, []string{"c"}, DefaultConfig())
		assert.Equal(t, []string{"c <= 4", "c > 4"}, got)
	}
}

func TestRefinements_RejectsUnsupportedKind(t *testing.T) {
	_, err := Refinements(subgroup.CatchAll(), mixedTable(t), []string{"x", "seen"}, DefaultConfig())
	assert.ErrorIs(t, err, core.ErrInputType)

	_, err = Refinements(subgroup.CatchAll(), mixedTable(t), []string{"nope"}, DefaultConfig())
	assert.True(t, core.IsNotFoundError(err))
}

func TestRefinements_SingleUse(t *testing.T) {
	seq, err := Refinements(subgroup.CatchAll(), mixedTable(t), []string{"flag"}, DefaultConfig())
	require.NoError(t, err)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 4, first)
	assert.Equal(t, 0, second)
}

func TestRefinements_EarlyBreak(t *testing.T) {
	seq, err := Refinements(subgroup.CatchAll(), mixedTable(t), []string{"x", "color"}, DefaultConfig())
	require.NoError(t, err)
	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestSearchSpace(t *testing.T) {
	preds, err := SearchSpace(mixedTable(t), []string{"flag"}, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, preds, 4)
	assert.Equal(t, "flag == 'true'", preds[0].String())
	assert.Equal(t, "flag != 'false'", preds[3].String())
}
