package strategy

import (
	"gosubgroup/domain/subgroup"
	"gosubgroup/internal/search/quality"
)

// DFS enumerates every conjunction of search space predicates, in search
// space order, up to the task depth.
type DFS struct {
	// UseOptimisticEstimates prunes branches whose bound cannot beat the
	// current minimum
	UseOptimisticEstimates bool
}

func (DFS) Name() string { return "dfs" }

func (s DFS) Execute(task Task) (*Result, error) {
	task, eval, err := task.prepare()
	if err != nil {
		return nil, err
	}

	w := &dfsWalk{task: task, eval: eval, rs: NewResultSet(task.ResultSetSize), prune: s.UseOptimisticEstimates}
	if err := w.visit(subgroup.CatchAll(), task.SearchSpace); err != nil {
		return nil, err
	}
	return &Result{Strategy: s.Name(), Entries: w.rs.Entries(), Evaluated: w.evaluated}, nil
}

type dfsWalk struct {
	task      Task
	eval      *quality.Evaluator
	rs        *ResultSet
	prune     bool
	evaluated int
}

func (w *dfsWalk) visit(prefix subgroup.Description, remaining []subgroup.Predicate) error {
	cov, err := w.eval.Cover(prefix)
	if err != nil {
		return err
	}
	// every specialisation of an empty subgroup is empty too
	if cov.Size == 0 {
		return nil
	}
	if w.prune && prefix.Len() < w.task.Depth {
		if !(w.task.Quality.OptimisticEstimate(cov) > minimumRequired(w.rs, w.task)) {
			return nil
		}
	}

	q, err := w.task.Quality.Evaluate(cov)
	if err != nil {
		return err
	}
	w.evaluated++
	AddIfRequired(w.rs, w.task, prefix, q, cov)
	if !w.task.constraintsSatisfied(cov) {
		return nil
	}

	if prefix.Len() >= w.task.Depth {
		return nil
	}
	for i, p := range remaining {
		if prefix.Contains(p) {
			continue
		}
		if err := w.visit(prefix.Refine(p), remaining[i+1:]); err != nil {
			return err
		}
	}
	return nil
}
