// Package strategy runs alternative subgroup searches over a fixed selector
// space so their result sets can be compared with the beam search.
package strategy

import (
	"math"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/subgroup"
	"gosubgroup/internal/search/quality"
	"gosubgroup/internal/search/refine"
)

// DefaultResultSetSize matches the size used by the comparison runs
const DefaultResultSetSize = 100

// Constraint is an anti-monotone condition on coverage: once a subgroup
// fails it, so does every specialisation.
type Constraint interface {
	Satisfied(c quality.Coverage) bool
}

// MinSupport requires at least Size covered rows
type MinSupport struct {
	Size int
}

func (m MinSupport) Satisfied(c quality.Coverage) bool { return c.Size >= m.Size }

// MinSupportFraction requires at least the given share of all rows
type MinSupportFraction struct {
	Fraction float64
}

func (m MinSupportFraction) Satisfied(c quality.Coverage) bool {
	return quality.Satisfies(c, m.Fraction)
}

// Task describes one search
type Task struct {
	Table  *dataset.Table
	Target string
	// Features is used to build SearchSpace when it is empty
	Features      []string
	SearchSpace   []subgroup.Predicate
	Quality       quality.Function
	ResultSetSize int
	Depth         int
	Constraints   []Constraint
	MinQuality    float64
	// CheckDuplicates turns on near-duplicate suppression in AddIfRequired
	CheckDuplicates bool
}

// NewTask returns a task with the comparison defaults: WRAcc, depth 2,
// 100 results and duplicate suppression.
func NewTask(table *dataset.Table, target string) Task {
	return Task{
		Table:           table,
		Target:          target,
		Quality:         quality.WRAcc,
		ResultSetSize:   DefaultResultSetSize,
		Depth:           2,
		CheckDuplicates: true,
	}
}

// prepare fills defaults and builds the evaluator
func (t Task) prepare() (Task, *quality.Evaluator, error) {
	if t.Table == nil {
		return t, nil, core.NewOptionError("task", "has no table")
	}
	if t.Depth < 1 || t.ResultSetSize < 1 {
		return t, nil, core.NewOptionError("task", "depth and result set size must be positive")
	}
	if t.Quality == nil {
		t.Quality = quality.WRAcc
	}
	eval, err := quality.NewEvaluator(t.Table, t.Target, t.Quality)
	if err != nil {
		return t, nil, err
	}
	if len(t.SearchSpace) == 0 {
		features := t.Features
		if len(features) == 0 {
			features = t.Table.Features(t.Target)
		}
		space, err := refine.SearchSpace(t.Table, features, refine.DefaultConfig())
		if err != nil {
			return t, nil, err
		}
		t.SearchSpace = space
	}
	return t, eval, nil
}

func (t Task) constraintsSatisfied(c quality.Coverage) bool {
	for _, con := range t.Constraints {
		if !con.Satisfied(c) {
			return false
		}
	}
	return true
}

// Strategy is a complete search algorithm
type Strategy interface {
	Name() string
	Execute(task Task) (*Result, error)
}

// minimumRequired is the quality a newcomer has to beat
func minimumRequired(rs *ResultSet, task Task) float64 {
	if rs.Len() < task.ResultSetSize {
		return task.MinQuality
	}
	if min, ok := rs.Min(); ok {
		return math.Max(min, task.MinQuality)
	}
	return task.MinQuality
}
