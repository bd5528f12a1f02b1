package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	var reader readerFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile [data-file]",
		Short: "Describe every column and flag the ones usable as a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			readerCfg, err := reader.config(nil)
			if err != nil {
				return err
			}
			p, err := newService(readerCfg, nil).Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}

			fmt.Printf("%s: %d rows, %d columns\n", p.Name, p.Rows, len(p.Columns))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tKIND\tMISSING\tDISTINCT\tSUMMARY")
			for _, c := range p.Columns {
				summary := ""
				switch {
				case c.Distribution != nil:
					d := c.Distribution
					summary = fmt.Sprintf("mean %.4g, sd %.4g, range [%.4g, %.4g]", d.Mean, d.StdDev, d.Min, d.Max)
				case len(c.Top) > 0:
					summary = fmt.Sprintf("top %s (%d)", c.Top[0].Value, c.Top[0].Count)
				}
				if c.CandidateTarget {
					summary += fmt.Sprintf("; target candidate, rate %.4f", c.PositiveRate)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", c.Name, c.Kind, c.Missing, c.Distinct, summary)
			}
			return w.Flush()
		},
	}

	reader.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON")
	return cmd
}
