// Package profiling describes a table column by column so a user can pick a
// target and the attributes to search over.
package profiling

import (
	"sort"

	"gosubgroup/domain/dataset"
	errs "gosubgroup/internal/errors"
)

// TopValues caps the category counts reported per nominal column
const TopValues = 5

// ValueCount is one category and how often it occurs
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile describes one column
type ColumnProfile struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Missing  int    `json:"missing"`
	Distinct int    `json:"distinct"`
	// Distribution is set for numeric columns with at least one value
	Distribution *Distribution `json:"distribution,omitempty"`
	// Top lists the most frequent values of nominal columns
	Top []ValueCount `json:"top,omitempty"`
	// CandidateTarget is true when the column resolves as a binary target
	CandidateTarget bool    `json:"candidate_target"`
	PositiveRate    float64 `json:"positive_rate,omitempty"`
}

// TableProfile describes a table
type TableProfile struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// Profile analyzes all columns in a table
func Profile(table *dataset.Table) (*TableProfile, error) {
	p := &TableProfile{Name: table.Name(), Rows: table.Len()}
	for _, col := range table.Columns() {
		cp, err := profileColumn(table, col)
		if err != nil {
			return nil, errs.Wrapf(err, "profile %s", col.Name)
		}
		p.Columns = append(p.Columns, cp)
	}
	return p, nil
}

func profileColumn(table *dataset.Table, col *dataset.Column) (ColumnProfile, error) {
	cp := ColumnProfile{Name: col.Name, Kind: col.Kind.String()}

	counts := map[string]int{}
	var values []float64
	for row := 0; row < col.Len(); row++ {
		if col.IsMissing(row) {
			cp.Missing++
			continue
		}
		counts[col.Text(row)]++
		if v, ok := col.Float(row); ok {
			values = append(values, v)
		}
	}
	cp.Distinct = len(counts)

	if col.Kind.IsNumeric() && len(values) > 0 {
		d, err := AnalyzeDistribution(values)
		if err != nil {
			return cp, err
		}
		cp.Distribution = &d
	}
	if col.Kind.IsNominal() {
		cp.Top = topValues(counts, TopValues)
	}

	if cp.Distinct <= 2 {
		if target, err := table.ResolveTarget(col.Name); err == nil {
			cp.CandidateTarget = true
			cp.PositiveRate = target.Rate()
		}
	}
	return cp, nil
}

// topValues sorts by count, then value, and keeps the first n
func topValues(counts map[string]int, n int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
