// Package report summarises ranked subgroups: how much of the table they
// cover, how good they are and how significant each one is.
package report

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/subgroup"
	"gosubgroup/internal/search/quality"
)

// Subgroup is one ranked result to summarise
type Subgroup struct {
	Description subgroup.Description
	Quality     float64
	Coverage    quality.Coverage
}

// Row is the per-subgroup line of a summary
type Row struct {
	Rank        int     `json:"rank"`
	Description string  `json:"description"`
	Quality     float64 `json:"quality"`
	Size        int     `json:"size"`
	Positives   int     `json:"positives"`
	Rate        float64 `json:"rate"`
	PValue      float64 `json:"p_value"`
	// PermutationP is zero unless a permutation test ran
	PermutationP float64 `json:"permutation_p,omitempty"`
}

// Summary describes a result set against the table it was mined from
type Summary struct {
	Title       string  `json:"title"`
	Rows        int     `json:"rows"`
	BaseRate    float64 `json:"base_rate"`
	Subgroups   []Row   `json:"subgroups"`
	CoveredRows int     `json:"covered_rows"`
	Coverage    float64 `json:"coverage"`
	AverageSize float64 `json:"average_size"`
	MaxQuality  float64 `json:"max_quality"`
	MeanQuality float64 `json:"mean_quality"`
	// Membership counts, per table row, the subgroups containing it
	Membership []int `json:"-"`
}

// Summarize evaluates every subgroup on table
func Summarize(title string, table *dataset.Table, target string, subgroups []Subgroup) (*Summary, error) {
	t, err := table.ResolveTarget(target)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Title:      title,
		Rows:       table.Len(),
		BaseRate:   t.Rate(),
		Membership: make([]int, table.Len()),
	}
	qualities := make([]float64, 0, len(subgroups))
	total := 0
	for i, sg := range subgroups {
		mask, err := sg.Description.Mask(table)
		if err != nil {
			return nil, err
		}
		size, positives := 0, 0
		for row, in := range mask {
			if !in {
				continue
			}
			s.Membership[row]++
			size++
			if t.Positive[row] {
				positives++
			}
		}
		total += size

		row := Row{
			Rank:        i + 1,
			Description: sg.Description.String(),
			Quality:     sg.Quality,
			Size:        size,
			Positives:   positives,
			PValue:      Significance(size, positives, t.Rate()),
		}
		if size > 0 {
			row.Rate = float64(positives) / float64(size)
		}
		s.Subgroups = append(s.Subgroups, row)
		qualities = append(qualities, sg.Quality)
	}

	for _, m := range s.Membership {
		if m > 0 {
			s.CoveredRows++
		}
	}
	if s.Rows > 0 {
		s.Coverage = float64(s.CoveredRows) / float64(s.Rows)
	}
	if len(subgroups) > 0 {
		s.AverageSize = float64(total) / float64(len(subgroups))
		if s.MaxQuality, err = stats.Max(qualities); err != nil {
			return nil, err
		}
		if s.MeanQuality, err = stats.Mean(qualities); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Significance is the one-sided binomial p-value of seeing at least
// positives hits among size rows when the true rate is baseRate.
func Significance(size, positives int, baseRate float64) float64 {
	if size == 0 || positives == 0 {
		return 1
	}
	b := distuv.Binomial{N: float64(size), P: baseRate}
	return b.Survival(float64(positives - 1))
}

// Comparison contrasts two summaries over row-aligned tables
type Comparison struct {
	Left            string  `json:"left"`
	Right           string  `json:"right"`
	Added           int     `json:"added"`
	Removed         int     `json:"removed"`
	AddedFraction   float64 `json:"added_fraction"`
	RemovedFraction float64 `json:"removed_fraction"`
}

// Compare counts rows covered by left but not right (added) and by right
// but not left (removed).
func Compare(left, right *Summary) (*Comparison, error) {
	if len(left.Membership) != len(right.Membership) {
		return nil, fmt.Errorf("%w: cannot compare summaries over %d and %d rows",
			core.ErrInvalidTable, len(left.Membership), len(right.Membership))
	}
	c := &Comparison{Left: left.Title, Right: right.Title}
	for row := range left.Membership {
		l, r := left.Membership[row] > 0, right.Membership[row] > 0
		switch {
		case l && !r:
			c.Added++
		case r && !l:
			c.Removed++
		}
	}
	if n := len(left.Membership); n > 0 {
		c.AddedFraction = float64(c.Added) / float64(n)
		c.RemovedFraction = float64(c.Removed) / float64(n)
	}
	return c, nil
}
