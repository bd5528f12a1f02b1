package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gosubgroup/adapters/excel"
	"gosubgroup/adapters/postgres"
	"gosubgroup/app"
	"gosubgroup/internal"
	"gosubgroup/internal/config"
	"gosubgroup/internal/preprocess"
	"gosubgroup/internal/report"
	"gosubgroup/internal/search/beam"
	"gosubgroup/ports"
)

// searchFlags bind the search options; only flags the user set override a
// task file
type searchFlags struct {
	target      string
	task        string
	search      config.SearchConfig
	standardize bool
	encodeCat   []string
	encodeNum   []string
	encodeN     int
	reader      readerFlags
}

func (f *searchFlags) register(cmd *cobra.Command) {
	d := config.LoadSearchConfig()
	cmd.Flags().StringVar(&f.target, "target", "", "Binary target column")
	cmd.Flags().StringVar(&f.task, "task", "", "YAML task file; flags override its values")
	cmd.Flags().IntVar(&f.search.BeamWidth, "width", d.BeamWidth, "Beam width")
	cmd.Flags().IntVar(&f.search.Depth, "depth", d.Depth, "Maximum description length")
	cmd.Flags().IntVar(&f.search.ResultCap, "cap", d.ResultCap, "Number of subgroups to keep")
	cmd.Flags().IntVar(&f.search.NChunks, "n-chunks", d.NChunks, "Numeric split points per attribute")
	cmd.Flags().StringVar(&f.search.Schedule, "schedule", d.Schedule, "Percentile schedule: reciprocal|even")
	cmd.Flags().BoolVar(&f.search.EnsureDiversity, "diversity", d.EnsureDiversity, "Reject refinements scoring like their seed")
	cmd.Flags().Float64Var(&f.search.MinCoverage, "min-coverage", d.MinCoverage, "Minimum share of rows a subgroup must cover")
	cmd.Flags().StringSliceVar(&f.search.Features, "features", nil, "Attributes to describe subgroups with (default: all but the target)")
	cmd.Flags().StringVar(&f.search.Quality, "quality", d.Quality, "Quality measure: wracc|standard")
	cmd.Flags().Float64Var(&f.search.A, "a", d.A, "Size exponent of the standard quality measure")
	cmd.Flags().IntVar(&f.search.Permutations, "permutations", d.Permutations, "Label shuffles per subgroup for the permutation test (0 disables)")
	cmd.Flags().BoolVar(&f.standardize, "standardize", false, "Z-score numeric columns before searching")
	cmd.Flags().StringSliceVar(&f.encodeCat, "encode-categorical", nil, "Categorical columns to replace by principal components")
	cmd.Flags().StringSliceVar(&f.encodeNum, "encode-numeric", nil, "Numeric columns to replace by principal components")
	cmd.Flags().IntVar(&f.encodeN, "encode-features", 2, "Number of components the encoded columns become")
	f.search.Strategy = d.Strategy
	f.reader.register(cmd)
}

// request merges the task file, when given, with the flags the user set
func (f *searchFlags) request(cmd *cobra.Command, args []string) (app.DiscoveryRequest, excel.ReaderConfig, error) {
	var task *config.Task
	req := app.DiscoveryRequest{Target: f.target, Standardize: f.standardize, Search: f.search}
	if f.task != "" {
		var err error
		if task, err = config.LoadTask(f.task, config.LoadSearchConfig()); err != nil {
			return req, excel.ReaderConfig{}, err
		}
		fromTask := app.RequestFromTask(task)
		overrideSearch(cmd, &fromTask.Search, f.search)
		if f.target != "" {
			fromTask.Target = f.target
		}
		fromTask.Standardize = fromTask.Standardize || f.standardize
		req = fromTask
	}
	if len(args) > 0 {
		req.Dataset = args[0]
	}
	if req.Dataset == "" {
		return req, excel.ReaderConfig{}, fmt.Errorf("a data file is required, as an argument or in the task file")
	}
	if len(f.encodeCat)+len(f.encodeNum) > 0 {
		req.Encode = &app.EncodeSpec{Categorical: f.encodeCat, Numeric: f.encodeNum, Features: f.encodeN}
	}

	var readerTask *config.ReaderTask
	if task != nil {
		readerTask = &task.Reader
	}
	readerCfg, err := f.reader.config(readerTask)
	return req, readerCfg, err
}

func overrideSearch(cmd *cobra.Command, dst *config.SearchConfig, flags config.SearchConfig) {
	set := cmd.Flags().Changed
	if set("width") {
		dst.BeamWidth = flags.BeamWidth
	}
	if set("depth") {
		dst.Depth = flags.Depth
	}
	if set("cap") {
		dst.ResultCap = flags.ResultCap
	}
	if set("n-chunks") {
		dst.NChunks = flags.NChunks
	}
	if set("schedule") {
		dst.Schedule = flags.Schedule
	}
	if set("diversity") {
		dst.EnsureDiversity = flags.EnsureDiversity
	}
	if set("min-coverage") {
		dst.MinCoverage = flags.MinCoverage
	}
	if set("features") {
		dst.Features = flags.Features
	}
	if set("quality") {
		dst.Quality = flags.Quality
	}
	if set("a") {
		dst.A = flags.A
	}
	if set("permutations") {
		dst.Permutations = flags.Permutations
	}
}

func newDiscoverCmd() *cobra.Command {
	var flags searchFlags
	var strategyName, xlsxOut, htmlOut string
	var save, asJSON bool

	cmd := &cobra.Command{
		Use:   "discover [data-file]",
		Short: "Find exceptional subgroups for a binary target",
		Long: `Run a subgroup search on a CSV or XLSX file and print the ranked subgroups.

Examples:
  gosubgroup discover data.csv --target churn --depth 3 --width 20
  gosubgroup discover --task ionosphere.yaml --xlsx results.xlsx --html report.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, readerCfg, err := flags.request(cmd, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strategy") || req.Search.Strategy == "" {
				req.Search.Strategy = strategyName
			}
			req.Persist = save

			var repo ports.RunRepository
			if save {
				closeDB, r, err := openRepository(cmd.Context())
				if err != nil {
					return err
				}
				defer closeDB()
				repo = r
			}

			svc := newService(readerCfg, repo)
			result, err := svc.Discover(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(result, xlsxOut, htmlOut, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&strategyName, "strategy", "beam", "Search strategy: beam|dfs|best-first")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Write the ranked subgroups and manifest to this workbook")
	cmd.Flags().StringVar(&htmlOut, "html", "", "Write the report as HTML to this file")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the run in the configured database")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON instead of markdown")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var flags searchFlags
	var strategies []string

	cmd := &cobra.Command{
		Use:   "compare [data-file]",
		Short: "Run several strategies concurrently and compare their coverage",
		Long: `Run the given strategies on the same table and report, for each strategy
after the first, how many rows its subgroups add or remove relative to the first.

Example: gosubgroup compare data.csv --target churn --strategies beam,dfs,best-first`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, readerCfg, err := flags.request(cmd, args)
			if err != nil {
				return err
			}
			out, err := newService(readerCfg, nil).Compare(cmd.Context(), req, strategies)
			if err != nil {
				return err
			}
			for _, res := range out.Results {
				fmt.Println(res.Summary.Markdown())
			}
			for _, c := range out.Comparisons {
				fmt.Println(c.Markdown())
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&strategies, "strategies", []string{"beam", "dfs", "best-first"}, "Strategies to run")
	return cmd
}

func newStandardizeCmd() *cobra.Command {
	var reader readerFlags
	var target string
	var columns []string

	cmd := &cobra.Command{
		Use:   "standardize [input] [output]",
		Short: "Z-score numeric columns and write the table back out",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			readerCfg, err := reader.config(nil)
			if err != nil {
				return err
			}
			table, err := excel.NewDataReader(readerCfg).Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			std, err := preprocess.Standardize(table, columns, target)
			if err != nil {
				return err
			}
			if err := excel.WriteTable(args[1], std); err != nil {
				return err
			}
			fmt.Printf("Standardized %d rows into %s\n", std.Len(), args[1])
			return nil
		},
	}

	reader.register(cmd)
	cmd.Flags().StringVar(&target, "target", "", "Column left untouched")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to standardize (default: every numeric column)")
	return cmd
}

func newService(readerCfg excel.ReaderConfig, repo ports.RunRepository) *app.DiscoveryService {
	logger := internal.DefaultLogger
	return app.NewDiscoveryService(excel.NewDataReader(readerCfg), repo, logger).
		WithObservers(beam.NewLoggingObserver(logger))
}

// openRepository connects to the database named by the environment
func openRepository(ctx context.Context) (func(), ports.RunRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return func() { db.Close() }, postgres.NewRunRepository(db), nil
}

// emit prints the result and writes the optional exports
func emit(result *app.DiscoveryResult, xlsxOut, htmlOut string, asJSON bool) error {
	md := result.Summary.Markdown()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Println(md)
		fmt.Printf("Run %s (%s), %d subgroups evaluated in %s\n",
			result.Run.ID(), result.Run.Manifest.Strategy, result.Evaluated, result.Duration)
	}

	if xlsxOut != "" {
		if err := excel.NewResultWriter().Write(xlsxOut, result.Run); err != nil {
			return err
		}
	}
	if htmlOut != "" {
		if err := os.WriteFile(htmlOut, report.HTML(md), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", htmlOut, err)
		}
	}
	return nil
}
