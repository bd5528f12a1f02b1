// Package preprocess prepares tables for subgroup search.
package preprocess

import (
	"github.com/montanaflynn/stats"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	errs "gosubgroup/internal/errors"
)

// Standardize z-scores the named numeric columns with the sample standard
// deviation. An empty list means every numeric column. The target column is
// never touched, missing cells stay missing and integer columns become float
// columns. A constant column is centred to zero.
func Standardize(table *dataset.Table, columns []string, target string) (*dataset.Table, error) {
	if len(columns) == 0 {
		for _, c := range table.Columns() {
			if c.Kind.IsNumeric() {
				columns = append(columns, c.Name)
			}
		}
	}

	var replaced []*dataset.Column
	for _, name := range columns {
		if name == target {
			continue
		}
		col, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		if !col.Kind.IsNumeric() {
			return nil, core.NewInputTypeError(name, col.Kind)
		}
		std, err := zScore(col)
		if err != nil {
			return nil, errs.Wrapf(err, "standardize %s", name)
		}
		replaced = append(replaced, std)
	}
	if len(replaced) == 0 {
		return table, nil
	}
	return table.Substitute(replaced...)
}

func zScore(col *dataset.Column) (*dataset.Column, error) {
	n := col.Len()
	present := make([]float64, 0, n)
	for row := 0; row < n; row++ {
		if v, ok := col.Float(row); ok {
			present = append(present, v)
		}
	}

	out := make([]float64, n)
	missing := make([]int, 0)
	if len(present) == 0 {
		for row := range out {
			missing = append(missing, row)
		}
		return dataset.NewFloatColumn(col.Name, out).WithMissing(missing...), nil
	}

	mean, err := stats.Mean(present)
	if err != nil {
		return nil, err
	}
	sd := 0.0
	if len(present) > 1 {
		sd, err = stats.StandardDeviationSample(present)
		if err != nil {
			return nil, err
		}
	}

	for row := 0; row < n; row++ {
		v, ok := col.Float(row)
		if !ok {
			missing = append(missing, row)
			continue
		}
		if sd == 0 {
			out[row] = 0
			continue
		}
		out[row] = (v - mean) / sd
	}
	return dataset.NewFloatColumn(col.Name, out).WithMissing(missing...), nil
}
