// Package beam implements level-wise beam search for exceptional subgroups
// (the EMM algorithm of Duivesteijn and van Dijk).
package beam

import (
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/subgroup"
	"gosubgroup/internal/search/quality"
	"gosubgroup/internal/search/queue"
	"gosubgroup/internal/search/refine"
	"gosubgroup/ports"
)

// CatchAllQuality stands in for the quality of the empty seed so that every
// first-level refinement counts as diverse.
const CatchAllQuality = 99

// Result is one ranked subgroup
type Result struct {
	Quality     float64              `json:"quality"`
	Description subgroup.Description `json:"-"`
	Coverage    quality.Coverage     `json:"coverage"`
}

// Stats counts what happened to generated refinements
type Stats struct {
	Levels            int `json:"levels"`
	SeedsExpanded     int `json:"seeds_expanded"`
	Generated         int `json:"generated"`
	BelowCoverage     int `json:"below_coverage"`
	DiversityRejected int `json:"diversity_rejected"`
	Scored            int `json:"scored"`
}

// Run is the outcome of a search
type Run struct {
	Results []Result
	Stats   Stats
}

// Descriptions returns the result descriptions in rank order
func (r *Run) Descriptions() []subgroup.Description {
	out := make([]subgroup.Description, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Description
	}
	return out
}

// Engine runs beam searches with a fixed configuration
type Engine struct {
	opts      Options
	observers []ports.SearchObserver
}

// NewEngine validates opts
func NewEngine(opts Options, observers ...ports.SearchObserver) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts, observers: observers}, nil
}

// Discover is a convenience wrapper around NewEngine and Engine.Discover
func Discover(catchAll subgroup.Description, table *dataset.Table, opts Options, observers ...ports.SearchObserver) (*Run, error) {
	engine, err := NewEngine(opts, observers...)
	if err != nil {
		return nil, err
	}
	return engine.Discover(catchAll, table)
}

// Discover searches table starting from catchAll. Errors are input or
// precondition violations and abort the run.
func (e *Engine) Discover(catchAll subgroup.Description, table *dataset.Table) (*Run, error) {
	opts := e.opts.resolve(table)
	eval, err := quality.NewEvaluator(table, opts.Target, opts.Quality)
	if err != nil {
		return nil, err
	}
	refineCfg := refine.Config{Chunks: opts.NChunks, Schedule: opts.Schedule}

	var stats Stats
	results := queue.NewBounded[subgroup.Description](opts.ResultCap)
	candidates := queue.NewCandidates()
	candidates.Enqueue(catchAll)

	for level := 0; level < opts.Depth; level++ {
		e.levelStarted(level, candidates.Len())
		beam := queue.NewBounded[subgroup.Description](opts.BeamWidth)

		for _, seed := range candidates.Values() {
			seedQuality := float64(CatchAllQuality)
			if !seed.IsEmpty() {
				seedQuality, _, err = eval.Quality(seed)
				if err != nil {
					return nil, err
				}
			}
			e.seedStarted(level, seed, seedQuality)
			stats.SeedsExpanded++

			children, err := refine.Refinements(seed, table, opts.Features, refineCfg)
			if err != nil {
				return nil, err
			}
			for desc := range children {
				stats.Generated++
				cov, err := eval.Cover(desc)
				if err != nil {
					return nil, err
				}
				if cov.Size == 0 || !quality.Satisfies(cov, opts.MinCoverage) {
					stats.BelowCoverage++
					continue
				}

				q, err := opts.Quality.Evaluate(cov)
				if err != nil {
					return nil, err
				}
				stats.Scored++

				if opts.EnsureDiversity && !diverse(q, seedQuality) {
					stats.DiversityRejected++
					continue
				}
				results.Add(desc, q, cov)
				beam.Add(desc, q, cov)
			}
		}

		next := queue.NewCandidates()
		next.AddAll(beam.Items())
		candidates = next
		stats.Levels++
		e.levelFinished(level, beam.Len(), results.Len())
	}

	return &Run{Results: collect(results), Stats: stats}, nil
}

// diverse reports whether q differs from the seed quality by more than the tolerance
func diverse(q, seedQuality float64) bool {
	return q < seedQuality-quality.Tolerance || q > seedQuality+quality.Tolerance
}

func collect(results *queue.Bounded[subgroup.Description]) []Result {
	values := results.Values()
	out := make([]Result, len(values))
	for i, v := range values {
		cov, _ := v.Aux.(quality.Coverage)
		out[i] = Result{Quality: v.Quality, Description: v.Item, Coverage: cov}
	}
	return out
}

func (e *Engine) levelStarted(level, seeds int) {
	for _, o := range e.observers {
		o.LevelStarted(level, seeds)
	}
}

func (e *Engine) seedStarted(level int, seed subgroup.Description, q float64) {
	for _, o := range e.observers {
		o.SeedStarted(level, seed, q)
	}
}

func (e *Engine) levelFinished(level, beamSize, resultSize int) {
	for _, o := range e.observers {
		o.LevelFinished(level, beamSize, resultSize)
	}
}
