package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the summary as a markdown document
func (s *Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	fmt.Fprintf(&b, "- rows: %d (base rate %.4f)\n", s.Rows, s.BaseRate)
	fmt.Fprintf(&b, "- coverage: %d (%.4f)\n", s.CoveredRows, s.Coverage)
	fmt.Fprintf(&b, "- average subgroup size: %.2f\n", s.AverageSize)
	fmt.Fprintf(&b, "- quality: max %.5f, mean %.5f\n\n", s.MaxQuality, s.MeanQuality)

	if len(s.Subgroups) == 0 {
		b.WriteString("No subgroups found.\n")
		return b.String()
	}
	permuted := len(s.Subgroups) > 0 && s.Subgroups[0].PermutationP > 0
	if permuted {
		b.WriteString("| # | subgroup | quality | size | positives | rate | p-value | permutation p |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
	} else {
		b.WriteString("| # | subgroup | quality | size | positives | rate | p-value |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
	}
	for _, r := range s.Subgroups {
		fmt.Fprintf(&b, "| %d | `%s` | %.5f | %d | %d | %.3f | %.3g |",
			r.Rank, r.Description, r.Quality, r.Size, r.Positives, r.Rate, r.PValue)
		if permuted {
			fmt.Fprintf(&b, " %.4f |", r.PermutationP)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the comparison as a short markdown section
func (c *Comparison) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s vs %s\n\n", c.Left, c.Right)
	fmt.Fprintf(&b, "- rows added in subgroups: %d (%.4f)\n", c.Added, c.AddedFraction)
	fmt.Fprintf(&b, "- rows no longer in subgroups: %d (%.4f)\n", c.Removed, c.RemovedFraction)
	return b.String()
}

// HTML converts markdown produced by this package into an HTML fragment
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, r)
}
