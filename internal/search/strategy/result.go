package strategy

import (
	"math"

	"gosubgroup/domain/subgroup"
	"gosubgroup/internal/search/quality"
	"gosubgroup/internal/search/queue"
)

// Entry is one subgroup in a result
type Entry struct {
	Quality     float64              `json:"quality"`
	Description subgroup.Description `json:"-"`
	Coverage    quality.Coverage     `json:"coverage"`
}

// Result is the ranked outcome of a strategy
type Result struct {
	Strategy  string  `json:"strategy"`
	Entries   []Entry `json:"entries"`
	Evaluated int     `json:"evaluated"`
}

// Descriptions lists the result descriptions best first
func (r *Result) Descriptions() []subgroup.Description {
	out := make([]subgroup.Description, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Description
	}
	return out
}

// ResultSet is the bounded working set a strategy admits into
type ResultSet struct {
	best *queue.Bounded[subgroup.Description]
}

// NewResultSet holds at most size entries
func NewResultSet(size int) *ResultSet {
	return &ResultSet{best: queue.NewBounded[subgroup.Description](size)}
}

func (rs *ResultSet) Len() int { return rs.best.Len() }

// Min returns the lowest retained quality
func (rs *ResultSet) Min() (float64, bool) {
	min, ok := rs.best.Min()
	return min.Quality, ok
}

// Entries returns the retained subgroups sorted by descending quality
func (rs *ResultSet) Entries() []Entry {
	values := rs.best.Values()
	out := make([]Entry, len(values))
	for i, v := range values {
		cov, _ := v.Aux.(quality.Coverage)
		out[i] = Entry{Quality: v.Quality, Description: v.Item, Coverage: cov}
	}
	return out
}

// AddIfRequired admits d when its quality exceeds the task minimum, it
// satisfies the task constraints and, with duplicate checking on, no
// retained subgroup of (almost) the same quality shares a predicate with it.
// Retention is bounded by the result set size.
func AddIfRequired(rs *ResultSet, task Task, d subgroup.Description, q float64, cov quality.Coverage) bool {
	if !(q > task.MinQuality) {
		return false
	}
	if !task.constraintsSatisfied(cov) {
		return false
	}
	if task.CheckDuplicates {
		for _, existing := range rs.best.Values() {
			if math.Abs(q-existing.Quality) < quality.Tolerance && d.SharesPredicate(existing.Item) {
				return false
			}
		}
	}
	return rs.best.Add(d, q, cov)
}
