package refine

import (
	"fmt"
	"math"
	"slices"
)

// Schedule picks the percentile targets used for numeric cut points.
type Schedule int

const (
	// Reciprocal tries 100/i for i in 1..n: 100th, 50th, 33.3rd, 25th, ...
	Reciprocal Schedule = iota
	// Even spaces the targets as i*100/(n+1): for n=4, 20th, 40th, 60th, 80th.
	Even
)

func (s Schedule) String() string {
	switch s {
	case Reciprocal:
		return "reciprocal"
	case Even:
		return "even"
	default:
		return fmt.Sprintf("schedule(%d)", int(s))
	}
}

// ParseSchedule accepts the names printed by String
func ParseSchedule(s string) (Schedule, error) {
	switch s {
	case "", "reciprocal":
		return Reciprocal, nil
	case "even":
		return Even, nil
	}
	return 0, fmt.Errorf("unknown split schedule %q", s)
}

// Targets returns the n percentile targets in emission order
func (s Schedule) Targets(n int) []float64 {
	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		switch s {
		case Even:
			out = append(out, float64(i)*100/float64(n+1))
		default:
			out = append(out, 100/float64(i))
		}
	}
	return out
}

// Percentile returns the p-th percentile (0..100) of sorted using linear
// interpolation between closest ranks, rank = p/100 * (n-1).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// CutPoints sorts a copy of values and evaluates every schedule target.
func CutPoints(values []float64, n int, schedule Schedule) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	targets := schedule.Targets(n)
	cuts := make([]float64, len(targets))
	for i, p := range targets {
		cuts[i] = Percentile(sorted, p)
	}
	return cuts
}
