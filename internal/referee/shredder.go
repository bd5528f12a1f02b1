// Package referee checks that a discovered subgroup is more than a lucky
// draw by shuffling the target and re-scoring the subgroup.
package referee

import (
	"fmt"
	"math/rand"

	"gosubgroup/domain/core"
	"gosubgroup/internal/search/quality"
)

// DefaultIterations is the number of label shuffles per subgroup
const DefaultIterations = 1000

// Shredder runs label permutation tests: the subgroup mask stays fixed while
// the positive labels are shuffled across rows.
type Shredder struct {
	Iterations int
	Seed       int64
}

// Verdict is the outcome of one permutation test
type Verdict struct {
	Observed   float64 `json:"observed"`
	PValue     float64 `json:"p_value"`
	Iterations int     `json:"iterations"`
}

// Execute scores mask against positive, then against every shuffle, and
// reports the share of shuffles scoring at least as well. The estimate is
// (extreme+1)/(iterations+1) so it never reaches zero.
func (s Shredder) Execute(mask, positive []bool, fn quality.Function) (Verdict, error) {
	if len(mask) != len(positive) {
		return Verdict{}, fmt.Errorf("%w: mask has %d rows, target has %d", core.ErrInvalidTable, len(mask), len(positive))
	}
	iterations := s.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	observed, err := fn.Evaluate(cover(mask, positive))
	if err != nil {
		return Verdict{}, err
	}

	rng := rand.New(rand.NewSource(s.Seed))
	shuffled := append([]bool(nil), positive...)
	extreme := 0
	for i := 0; i < iterations; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		null, err := fn.Evaluate(cover(mask, shuffled))
		if err != nil {
			return Verdict{}, err
		}
		if null >= observed-quality.Tolerance {
			extreme++
		}
	}

	p := float64(extreme+1) / float64(iterations+1)
	return Verdict{
		Observed:   observed,
		PValue:     p,
		Iterations: iterations,
	}, nil
}

func cover(mask, positive []bool) quality.Coverage {
	c := quality.Coverage{Total: len(mask)}
	for row, pos := range positive {
		if pos {
			c.TotalPositives++
		}
		if mask[row] {
			c.Size++
			if pos {
				c.Positives++
			}
		}
	}
	return c
}
