package excel

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/run"
	"gosubgroup/ports"
)

var (
	_ ports.TableReader  = (*DataReader)(nil)
	_ ports.ResultWriter = (*ResultWriter)(nil)
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSVInference(t *testing.T) {
	path := writeFile(t, "people.csv", "age,height,color,member,joined,target\n"+
		"31,1.80,red,yes,2021-03-04,1\n"+
		"45,1.65,blue,no,2020-01-02,0\n"+
		"?,1.70, red ,yes,2019-12-31,1\n")

	table, err := NewDataReader(DefaultReaderConfig()).Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "people", table.Name())
	assert.Equal(t, 3, table.Len())

	kinds := map[string]dataset.ColumnKind{
		"age":    dataset.KindNumericInt,
		"height": dataset.KindNumericFloat,
		"color":  dataset.KindCategorical,
		"member": dataset.KindBoolean,
		"joined": dataset.KindTimestamp,
		"target": dataset.KindNumericInt,
	}
	for name, kind := range kinds {
		col, err := table.Column(name)
		require.NoError(t, err)
		assert.Equal(t, kind, col.Kind, name)
	}

	age, _ := table.Column("age")
	assert.True(t, age.IsMissing(2))
	color, _ := table.Column("color")
	v, ok := color.Nominal(2)
	require.True(t, ok)
	assert.Equal(t, "red", v)

	target, err := table.ResolveTarget("target")
	require.NoError(t, err)
	assert.Equal(t, 2, target.Positives)
}

func TestDataReader_NoHeaderAndForcedKinds(t *testing.T) {
	path := writeFile(t, "raw.csv", "1,g\n2,b\n3,g\n")
	cfg := DefaultReaderConfig()
	cfg.NoHeader = true
	cfg.Kinds = map[string]dataset.ColumnKind{"attribute0": dataset.KindCategorical}

	table, err := NewDataReader(cfg).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"attribute0", "attribute1"}, table.ColumnNames())
	col, _ := table.Column("attribute0")
	assert.Equal(t, dataset.KindCategorical, col.Kind)
}

func TestDataReader_Errors(t *testing.T) {
	r := NewDataReader(DefaultReaderConfig())

	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, core.IsNotFoundError(err))

	_, err = r.Read(context.Background(), writeFile(t, "header.csv", "a,b\n"))
	assert.ErrorIs(t, err, core.ErrInvalidTable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Read(ctx, writeFile(t, "ok.csv", "a\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataReader_ShortRowsArePadded(t *testing.T) {
	table, err := NewDataReader(DefaultReaderConfig()).Build("short", [][]string{
		{"a", "b"},
		{"1", "x"},
		{"2"},
	})
	require.NoError(t, err)
	b, _ := table.Column("b")
	assert.True(t, b.IsMissing(1))
}

func TestDataReader_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{{"x", "target"}, {1.5, 0}, {2.5, 1}}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewDataReader(DefaultReaderConfig()).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	x, _ := table.Column("x")
	assert.Equal(t, dataset.KindNumericFloat, x.Kind)
	v, _ := x.Float(1)
	assert.InDelta(t, 2.5, v, 1e-12)
}

func TestCoercer_Thresholds(t *testing.T) {
	cells := []string{"1", "2", "three", "4"}
	missing := make([]bool, len(cells))

	strict := NewTypeCoercer(DefaultCoercionConfig())
	assert.Equal(t, dataset.KindCategorical, strict.Infer(strict.Analyze(cells, missing)))

	lenient := NewTypeCoercer(CoercionConfig{NumericThreshold: 0.7, BooleanThreshold: 1, TimestampThreshold: 1})
	kind := lenient.Infer(lenient.Analyze(cells, missing))
	assert.Equal(t, dataset.KindNumericInt, kind)
	col := lenient.Build("n", kind, cells, missing)
	assert.True(t, col.IsMissing(2), "unparseable cells become missing")

	v, ok := parseNumeric("(12.5)")
	assert.True(t, ok)
	assert.Equal(t, -12.5, v)
	_, ok = parseNumeric("$")
	assert.False(t, ok)
}

func TestResultWriter(t *testing.T) {
	r := &run.Run{
		Manifest: *run.NewManifest("people", core.DatasetHash("abc"), 3, "target", "beam", map[string]interface{}{"depth": 2}),
		Status:   run.StatusRunning,
	}
	r.Complete([]run.SubgroupRecord{
		{Rank: 1, Description: "color == 'red'", Quality: 0.1111, Size: 2, Positives: 2, PValue: 0.44, PermutationP: 0.02},
	})

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, NewResultWriter().Write(path, r))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Subgroups")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "description", rows[0][1])
	assert.Equal(t, "color == 'red'", rows[1][1])
	assert.Equal(t, "permutation_p", rows[0][6])
	assert.Equal(t, "0.02", rows[1][6])

	manifest, err := f.GetRows("Manifest")
	require.NoError(t, err)
	assert.Equal(t, []string{"run_id", r.Manifest.RunID.String()}, manifest[0])
}

func TestWriteTable_RoundTrip(t *testing.T) {
	table, err := dataset.NewTable("t",
		dataset.NewFloatColumn("x", []float64{1.5, math.NaN(), -2}),
		dataset.NewCategoricalColumn("c", []string{"a", "b", "a"}),
		dataset.NewBoolColumn("flag", []bool{true, false, true}),
	)
	require.NoError(t, err)

	for _, name := range []string{"out.csv", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteTable(path, table))

			back, err := NewDataReader(DefaultReaderConfig()).Read(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, table.ColumnNames(), back.ColumnNames())

			x, _ := back.Column("x")
			assert.Equal(t, dataset.KindNumericFloat, x.Kind)
			assert.True(t, x.IsMissing(1))
			v, _ := x.Float(2)
			assert.InDelta(t, -2, v, 1e-12)

			flag, _ := back.Column("flag")
			assert.Equal(t, dataset.KindBoolean, flag.Kind)
		})
	}
}
