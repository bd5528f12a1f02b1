package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/run"
	"gosubgroup/internal"
	"gosubgroup/internal/config"
	errs "gosubgroup/internal/errors"
	"gosubgroup/internal/preprocess"
	"gosubgroup/internal/profiling"
	"gosubgroup/internal/referee"
	"gosubgroup/internal/report"
	"gosubgroup/internal/search/quality"
	"gosubgroup/internal/search/refine"
	"gosubgroup/internal/search/strategy"
	"gosubgroup/ports"
)

// EncodeSpec asks for some columns to be replaced by dense encoded ones
// before the search
type EncodeSpec struct {
	Categorical []string `json:"categorical" yaml:"categorical"`
	Numeric     []string `json:"numeric" yaml:"numeric"`
	Features    int      `json:"features" yaml:"features"`
}

// DiscoveryRequest describes one discovery. Table, when set, is used
// instead of reading Dataset.
type DiscoveryRequest struct {
	Dataset     string              `json:"dataset"`
	Table       *dataset.Table      `json:"-"`
	Target      string              `json:"target"`
	Standardize bool                `json:"standardize"`
	Encode      *EncodeSpec         `json:"encode,omitempty"`
	Search      config.SearchConfig `json:"search"`
	// Persist saves the run through the repository, when one is configured
	Persist bool `json:"persist"`
}

// RequestFromTask converts a task file into a request
func RequestFromTask(task *config.Task) DiscoveryRequest {
	return DiscoveryRequest{
		Dataset:     task.Dataset,
		Target:      task.Target,
		Standardize: task.Standardize,
		Search:      task.Search,
	}
}

// DiscoveryResult is the outcome of a discovery
type DiscoveryResult struct {
	Run     *run.Run        `json:"run"`
	Summary *report.Summary `json:"summary"`
	// Evaluated counts the subgroups the strategy scored
	Evaluated int `json:"evaluated"`
	// ReconstructionError is set when columns were encoded
	ReconstructionError float64       `json:"reconstruction_error,omitempty"`
	Duration            time.Duration `json:"duration_ns"`
}

// ComparisonResult holds one discovery per strategy plus coverage
// differences against the first strategy
type ComparisonResult struct {
	Results     []*DiscoveryResult   `json:"results"`
	Comparisons []*report.Comparison `json:"comparisons"`
}

// RunListener is told about every finished discovery
type RunListener interface {
	RunFinished(strategy string, status run.Status, elapsed time.Duration)
}

// DiscoveryService runs subgroup discovery end to end: load, preprocess,
// search, summarise and persist.
type DiscoveryService struct {
	reader     ports.TableReader
	repo       ports.RunRepository
	observers  []ports.SearchObserver
	listeners  []RunListener
	newEncoder func(features int) ports.Encoder
	logger     *internal.Logger
}

// NewDiscoveryService creates a discovery service. repo may be nil, in
// which case runs are never persisted.
func NewDiscoveryService(reader ports.TableReader, repo ports.RunRepository, logger *internal.Logger) *DiscoveryService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DiscoveryService{
		reader: reader,
		repo:   repo,
		newEncoder: func(features int) ports.Encoder {
			return preprocess.NewPCAEncoder(features)
		},
		logger: logger,
	}
}

// WithObservers attaches search observers to every beam search
func (s *DiscoveryService) WithObservers(observers ...ports.SearchObserver) *DiscoveryService {
	s.observers = append(s.observers, observers...)
	return s
}

// WithListeners attaches run listeners
func (s *DiscoveryService) WithListeners(listeners ...RunListener) *DiscoveryService {
	s.listeners = append(s.listeners, listeners...)
	return s
}

// Discover runs one strategy
func (s *DiscoveryService) Discover(ctx context.Context, req DiscoveryRequest) (*DiscoveryResult, error) {
	table, reconstruction, err := s.prepareTable(ctx, req)
	if err != nil {
		return nil, err
	}
	result, err := s.discover(ctx, table, req)
	if err != nil {
		return nil, err
	}
	result.ReconstructionError = reconstruction
	return result, nil
}

// Compare runs each strategy concurrently on the same prepared table and
// compares every result set's coverage with the first one's
func (s *DiscoveryService) Compare(ctx context.Context, req DiscoveryRequest, strategies []string) (*ComparisonResult, error) {
	if len(strategies) == 0 {
		return nil, errs.ValidationError("no strategies to compare")
	}
	table, reconstruction, err := s.prepareTable(ctx, req)
	if err != nil {
		return nil, err
	}

	results := make([]*DiscoveryResult, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range strategies {
		g.Go(func() error {
			r := req
			r.Search.Strategy = name
			res, err := s.discover(gctx, table, r)
			if err != nil {
				return errs.Wrapf(err, "strategy %s", name)
			}
			res.ReconstructionError = reconstruction
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ComparisonResult{Results: results}
	for _, res := range results[1:] {
		c, err := report.Compare(results[0].Summary, res.Summary)
		if err != nil {
			return nil, err
		}
		out.Comparisons = append(out.Comparisons, c)
	}
	return out, nil
}

// Profile reads a dataset and describes its columns
func (s *DiscoveryService) Profile(ctx context.Context, path string) (*profiling.TableProfile, error) {
	if path == "" {
		return nil, errs.ValidationError("dataset is required")
	}
	table, err := s.reader.Read(ctx, path)
	if err != nil {
		return nil, errs.Wrapf(err, "failed to read %s", path)
	}
	return profiling.Profile(table)
}

// GetRun loads a persisted run
func (s *DiscoveryService) GetRun(ctx context.Context, id core.RunID) (*run.Run, error) {
	if s.repo == nil {
		return nil, errs.NotFound("run " + id.String())
	}
	return s.repo.Get(ctx, id)
}

// ListRuns lists persisted runs, newest first
func (s *DiscoveryService) ListRuns(ctx context.Context, filters ports.RunFilters) ([]run.Summary, error) {
	if s.repo == nil {
		return []run.Summary{}, nil
	}
	return s.repo.List(ctx, filters)
}

// prepareTable loads the table and applies standardisation and encoding
func (s *DiscoveryService) prepareTable(ctx context.Context, req DiscoveryRequest) (*dataset.Table, float64, error) {
	if req.Target == "" {
		return nil, 0, errs.ValidationError("target is required")
	}
	table := req.Table
	if table == nil {
		if req.Dataset == "" {
			return nil, 0, errs.ValidationError("dataset is required")
		}
		var err error
		if table, err = s.reader.Read(ctx, req.Dataset); err != nil {
			return nil, 0, errs.Wrapf(err, "failed to read %s", req.Dataset)
		}
	}
	s.logger.Info("[DiscoveryService] Loaded %s: %d rows, %d columns", table.Name(), table.Len(), len(table.Columns()))

	var reconstruction float64
	if req.Encode != nil {
		encoded, mse, err := s.newEncoder(req.Encode.Features).Encode(table, req.Encode.Categorical, req.Encode.Numeric)
		if err != nil {
			return nil, 0, errs.Wrap(err, "failed to encode columns")
		}
		s.logger.Info("[DiscoveryService] Encoded %d columns into %d, reconstruction error %.6f",
			len(req.Encode.Categorical)+len(req.Encode.Numeric), req.Encode.Features, mse)
		table, reconstruction = encoded, mse
	}
	if req.Standardize {
		std, err := preprocess.Standardize(table, nil, req.Target)
		if err != nil {
			return nil, 0, errs.Wrap(err, "failed to standardize")
		}
		table = std
	}
	return table, reconstruction, ctx.Err()
}

// discover runs the configured strategy on a prepared table
func (s *DiscoveryService) discover(ctx context.Context, table *dataset.Table, req DiscoveryRequest) (*DiscoveryResult, error) {
	start := time.Now()
	strat, task, err := s.buildStrategy(table, req)
	if err != nil {
		return nil, err
	}

	manifest := run.NewManifest(table.Name(), table.Fingerprint(), table.Len(), req.Target, strat.Name(), searchParams(req))
	rn := &run.Run{Manifest: *manifest, Status: run.StatusRunning}
	s.logger.Info("[DiscoveryService] Run %s: %s search for %q on %s (dataset %s)",
		rn.ID(), strat.Name(), req.Target, table.Name(), core.Hash(manifest.DatasetHash).Short())

	result, summary, err := s.execute(ctx, strat, task, req.Target)
	if err != nil {
		return nil, s.fail(ctx, rn, req.Persist, start, err)
	}

	if req.Search.Permutations > 0 {
		if err := s.shred(ctx, task, result, summary, req.Search.Permutations); err != nil {
			return nil, s.fail(ctx, rn, req.Persist, start, err)
		}
	}

	records := make([]run.SubgroupRecord, len(summary.Subgroups))
	for i, row := range summary.Subgroups {
		records[i] = run.SubgroupRecord{
			Rank:         row.Rank,
			Description:  row.Description,
			Quality:      row.Quality,
			Size:         row.Size,
			Positives:    row.Positives,
			PValue:       row.PValue,
			PermutationP: row.PermutationP,
		}
	}
	rn.Complete(records)
	elapsed := time.Since(start)
	if err := s.finish(ctx, rn, req.Persist, elapsed); err != nil {
		return nil, err
	}

	s.logger.Info("[DiscoveryService] Run %s finished in %s: %d subgroups, %d evaluated",
		rn.ID(), elapsed.Round(time.Millisecond), len(records), result.Evaluated)
	return &DiscoveryResult{Run: rn, Summary: summary, Evaluated: result.Evaluated, Duration: elapsed}, nil
}

func (s *DiscoveryService) execute(ctx context.Context, strat strategy.Strategy, task strategy.Task, target string) (*strategy.Result, *report.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	result, err := strat.Execute(task)
	if err != nil {
		return nil, nil, err
	}
	subgroups := make([]report.Subgroup, len(result.Entries))
	for i, e := range result.Entries {
		subgroups[i] = report.Subgroup{Description: e.Description, Quality: e.Quality, Coverage: e.Coverage}
	}
	summary, err := report.Summarize(fmt.Sprintf("%s on %s", strat.Name(), task.Table.Name()), task.Table, target, subgroups)
	if err != nil {
		return nil, nil, err
	}
	return result, summary, nil
}

// shred runs the label permutation test on every ranked subgroup. Each rank
// gets its own seed so a replay reproduces the p-values.
func (s *DiscoveryService) shred(ctx context.Context, task strategy.Task, result *strategy.Result, summary *report.Summary, iterations int) error {
	target, err := task.Table.ResolveTarget(task.Target)
	if err != nil {
		return err
	}
	for i, e := range result.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		mask, err := e.Description.Mask(task.Table)
		if err != nil {
			return err
		}
		verdict, err := referee.Shredder{Iterations: iterations, Seed: int64(i + 1)}.Execute(mask, target.Positive, task.Quality)
		if err != nil {
			return errs.Wrapf(err, "permutation test for %s", e.Description)
		}
		summary.Subgroups[i].PermutationP = verdict.PValue
		s.logger.Trace("[DiscoveryService] %s: q=%.5f, permutation p=%.4f over %d shuffles",
			e.Description, verdict.Observed, verdict.PValue, verdict.Iterations)
	}
	s.logger.Debug("[DiscoveryService] Permutation tested %d subgroups with %d shuffles each", len(result.Entries), iterations)
	return nil
}

// fail marks the run failed and still hands it to finish, so listeners and
// the store see failed runs too
func (s *DiscoveryService) fail(ctx context.Context, rn *run.Run, persist bool, start time.Time, err error) error {
	rn.Fail(err)
	elapsed := time.Since(start)
	s.logger.Warn("[DiscoveryService] Run %s failed after %s: %v", rn.ID(), elapsed.Round(time.Millisecond), err)
	_ = s.finish(ctx, rn, persist, elapsed)
	return errs.Wrapf(err, "run %s failed", rn.ID())
}

// finish notifies listeners and persists the run when asked to
func (s *DiscoveryService) finish(ctx context.Context, rn *run.Run, persist bool, elapsed time.Duration) error {
	for _, l := range s.listeners {
		l.RunFinished(rn.Manifest.Strategy, rn.Status, elapsed)
	}
	if !persist || s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, rn); err != nil {
		s.logger.Error("[DiscoveryService] Failed to save run %s: %v", rn.ID(), err)
		return errs.WithCode(errs.CodeDatabaseError, err)
	}
	return nil
}

func (s *DiscoveryService) buildStrategy(table *dataset.Table, req DiscoveryRequest) (strategy.Strategy, strategy.Task, error) {
	cfg := req.Search
	if err := cfg.Validate(); err != nil {
		return nil, strategy.Task{}, err
	}
	fn, err := quality.ParseFunction(cfg.Quality, cfg.A)
	if err != nil {
		return nil, strategy.Task{}, err
	}
	schedule, err := refine.ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, strategy.Task{}, core.NewOptionError("schedule", err.Error())
	}

	task := strategy.NewTask(table, req.Target)
	task.Features = cfg.Features
	task.Depth = cfg.Depth
	task.ResultSetSize = cfg.ResultCap
	task.Quality = fn

	switch cfg.Strategy {
	case "", "beam":
		// the beam keeps every subgroup it admitted, whatever its sign
		task.MinQuality = math.Inf(-1)
		return strategy.Beam{
			Width:           cfg.BeamWidth,
			NChunks:         cfg.NChunks,
			Schedule:        schedule,
			EnsureDiversity: cfg.EnsureDiversity,
			MinCoverage:     cfg.MinCoverage,
			Observers:       s.observers,
		}, task, nil
	}
	strat, ok := strategy.ByName(cfg.Strategy)
	if !ok {
		return nil, strategy.Task{}, core.NewOptionError("strategy", fmt.Sprintf("unknown strategy %q", cfg.Strategy))
	}
	if cfg.MinCoverage > 0 {
		task.Constraints = append(task.Constraints, strategy.MinSupportFraction{Fraction: cfg.MinCoverage})
	}
	return strat, task, nil
}

// searchParams is what the manifest records about the search
func searchParams(req DiscoveryRequest) map[string]interface{} {
	cfg := req.Search
	params := map[string]interface{}{
		"beam_width":       cfg.BeamWidth,
		"depth":            cfg.Depth,
		"result_cap":       cfg.ResultCap,
		"n_chunks":         cfg.NChunks,
		"schedule":         cfg.Schedule,
		"ensure_diversity": cfg.EnsureDiversity,
		"min_coverage":     cfg.MinCoverage,
		"quality":          cfg.Quality,
		"a":                cfg.A,
		"standardize":      req.Standardize,
	}
	if cfg.Permutations > 0 {
		params["permutations"] = cfg.Permutations
	}
	if len(cfg.Features) > 0 {
		params["features"] = cfg.Features
	}
	if req.Encode != nil {
		params["encode_features"] = req.Encode.Features
	}
	return params
}
