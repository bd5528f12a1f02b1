package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gosubgroup/domain/core"
	"gosubgroup/domain/run"
	"gosubgroup/ports"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted discovery runs",
	}

	var status, strategy string
	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closeDB, repo, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			filters := ports.RunFilters{Strategy: strategy, Limit: limit, Offset: offset}
			if status != "" {
				st := run.Status(status)
				filters.Status = &st
			}
			runs, err := repo.List(cmd.Context(), filters)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tDATASET\tSTRATEGY\tSTATUS\tSUBGROUPS\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", r.RunID, r.DatasetName, r.Strategy, r.Status, r.Subgroups, r.CreatedAt)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status: running|completed|failed")
	list.Flags().StringVar(&strategy, "strategy", "", "Filter by strategy")
	list.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	list.Flags().IntVar(&offset, "offset", 0, "Runs to skip")

	show := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Print a run's ranked subgroups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			closeDB, repo, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			r, err := repo.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			m := r.Manifest
			fmt.Printf("Run %s: %s on %s (%d rows), target %s, %s\n", m.RunID, m.Strategy, m.DatasetName, m.Rows, m.Target, r.Status)
			if r.Error != "" {
				fmt.Printf("Error: %s\n", r.Error)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tQUALITY\tSIZE\tPOSITIVES\tP-VALUE\tDESCRIPTION")
			for _, s := range r.Subgroups {
				fmt.Fprintf(w, "%d\t%.5f\t%d\t%d\t%.3g\t%s\n", s.Rank, s.Quality, s.Size, s.Positives, s.PValue, s.Description)
			}
			return w.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete [run-id]",
		Short: "Delete a run and its subgroups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			closeDB, repo, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()
			return repo.Delete(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the run store schema",
		Long: `Connect to the database named by DB_DRIVER and DATABASE_URL and apply
the schema. Migrations are idempotent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closeDB, _, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			closeDB()
			fmt.Println("Schema is up to date")
			return nil
		},
	}
}
