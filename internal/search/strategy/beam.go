package strategy

import (
	"gosubgroup/domain/core"
	"gosubgroup/domain/subgroup"
	"gosubgroup/internal/search/beam"
	"gosubgroup/internal/search/quality"
	"gosubgroup/internal/search/refine"
	"gosubgroup/ports"
)

// Beam runs the level-wise beam search under the Strategy contract. The
// search space of the task is ignored; the beam generates its own
// predicates from Features at every level.
type Beam struct {
	Width           int
	NChunks         int
	Schedule        refine.Schedule
	EnsureDiversity bool
	MinCoverage     float64
	Observers       []ports.SearchObserver
}

func (Beam) Name() string { return "beam" }

func (s Beam) Execute(task Task) (*Result, error) {
	if task.Table == nil {
		return nil, core.NewOptionError("task", "has no table")
	}
	opts := beam.DefaultOptions(task.Target)
	if s.Width > 0 {
		opts.BeamWidth = s.Width
	}
	opts.Depth = task.Depth
	opts.ResultCap = task.ResultSetSize
	opts.Features = task.Features
	opts.NChunks = s.NChunks
	opts.Schedule = s.Schedule
	opts.EnsureDiversity = s.EnsureDiversity
	opts.MinCoverage = s.MinCoverage
	opts.Quality = task.Quality

	run, err := beam.Discover(subgroup.CatchAll(), task.Table, opts, s.Observers...)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(run.Results))
	for _, r := range run.Results {
		if !(r.Quality > task.MinQuality) || !task.constraintsSatisfied(r.Coverage) {
			continue
		}
		entries = append(entries, Entry{Quality: r.Quality, Description: r.Description, Coverage: r.Coverage})
	}
	return &Result{Strategy: s.Name(), Entries: entries, Evaluated: run.Stats.Scored}, nil
}

// ByName resolves a strategy for the CLI and API
func ByName(name string) (Strategy, bool) {
	switch name {
	case "beam":
		return Beam{MinCoverage: quality.DefaultMinCoverage}, true
	case "dfs":
		return DFS{UseOptimisticEstimates: true}, true
	case "best-first", "bestfirst":
		return BestFirst{}, true
	}
	return nil, false
}
