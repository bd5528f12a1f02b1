package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gosubgroup/adapters/excel"
	"gosubgroup/domain/dataset"
	"gosubgroup/internal"
	"gosubgroup/internal/config"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "gosubgroup",
		Short:         "Exceptional subgroup discovery over tabular data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: ERROR|WARN|INFO|DEBUG|TRACE (default from LOG_LEVEL)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if logLevel == "" {
			return nil
		}
		level, ok := internal.ParseLogLevel(logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		internal.DefaultLogger = internal.NewLogger(level)
		return nil
	}

	rootCmd.AddCommand(
		newDiscoverCmd(),
		newCompareCmd(),
		newStandardizeCmd(),
		newProfileCmd(),
		newRunsCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readerFlags are shared by every command that loads a table
type readerFlags struct {
	sheet    string
	noHeader bool
	kinds    []string
}

func (f *readerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", excel.DefaultSheet, "Worksheet to read from XLSX files")
	cmd.Flags().BoolVar(&f.noHeader, "no-header", false, "The file has no header row; columns are named attribute0..N")
	cmd.Flags().StringSliceVar(&f.kinds, "kind", nil, "Force a column kind, e.g. --kind attribute3=categorical")
}

func (f *readerFlags) config(task *config.ReaderTask) (excel.ReaderConfig, error) {
	cfg := excel.DefaultReaderConfig()
	cfg.Sheet = f.sheet
	cfg.NoHeader = f.noHeader
	cfg.Kinds = map[string]dataset.ColumnKind{}

	kinds := map[string]string{}
	if task != nil {
		if task.Sheet != "" {
			cfg.Sheet = task.Sheet
		}
		cfg.NoHeader = cfg.NoHeader || task.NoHeader
		if len(task.MissingTokens) > 0 {
			cfg.MissingTokens = task.MissingTokens
		}
		for col, kind := range task.Kinds {
			kinds[col] = kind
		}
	}
	for _, kv := range f.kinds {
		col, kind, ok := strings.Cut(kv, "=")
		if !ok {
			return cfg, fmt.Errorf("--kind expects column=kind, got %q", kv)
		}
		kinds[col] = kind
	}
	for col, name := range kinds {
		kind, err := dataset.ParseColumnKind(name)
		if err != nil {
			return cfg, fmt.Errorf("column %s: %w", col, err)
		}
		cfg.Kinds[col] = kind
	}
	return cfg, nil
}
