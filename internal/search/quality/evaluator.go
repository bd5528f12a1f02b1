package quality

import (
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/subgroup"
)

// Evaluator binds a table and its resolved target so repeated scoring does
// not re-coerce the target column.
type Evaluator struct {
	table  *dataset.Table
	target *dataset.Target
	fn     Function
}

// NewEvaluator resolves target on table. fn defaults to WRAcc when nil.
func NewEvaluator(table *dataset.Table, target string, fn Function) (*Evaluator, error) {
	resolved, err := table.ResolveTarget(target)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		fn = WRAcc
	}
	return &Evaluator{table: table, target: resolved, fn: fn}, nil
}

// Table returns the bound table
func (e *Evaluator) Table() *dataset.Table { return e.table }

// Function returns the quality function
func (e *Evaluator) Function() Function { return e.fn }

// Target returns the resolved target
func (e *Evaluator) Target() *dataset.Target { return e.target }

// Cover counts matching rows and matching positives
func (e *Evaluator) Cover(d subgroup.Description) (Coverage, error) {
	mask, err := d.Mask(e.table)
	if err != nil {
		return Coverage{}, err
	}
	return e.CoverMask(mask), nil
}

// CoverMask counts rows selected by a precomputed mask
func (e *Evaluator) CoverMask(mask []bool) Coverage {
	c := Coverage{Total: e.table.Len(), TotalPositives: e.target.Positives}
	for row, in := range mask {
		if !in {
			continue
		}
		c.Size++
		if e.target.Positive[row] {
			c.Positives++
		}
	}
	return c
}

// Satisfies reports whether the subgroup covers at least threshold of the rows
func Satisfies(c Coverage, threshold float64) bool {
	return float64(c.Size) >= float64(c.Total)*threshold
}

// Quality scores d. An empty subgroup yields ErrDegenerateSubgroup.
func (e *Evaluator) Quality(d subgroup.Description) (float64, Coverage, error) {
	c, err := e.Cover(d)
	if err != nil {
		return 0, c, err
	}
	q, err := e.fn.Evaluate(c)
	return q, c, err
}

// SatisfiesAll reports whether d matches at least threshold × N rows of table.
func SatisfiesAll(d subgroup.Description, table *dataset.Table, threshold float64) (bool, error) {
	n, err := d.Count(table)
	if err != nil {
		return false, err
	}
	return float64(n) >= float64(table.Len())*threshold, nil
}

// EvalQuality returns the WRAcc of d against the binary target column.
func EvalQuality(d subgroup.Description, table *dataset.Table, target string) (float64, error) {
	e, err := NewEvaluator(table, target, WRAcc)
	if err != nil {
		return 0, err
	}
	q, _, err := e.Quality(d)
	return q, err
}
