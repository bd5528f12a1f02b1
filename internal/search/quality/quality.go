// Package quality scores subgroups against a binary target.
package quality

import (
	"fmt"
	"math"

	"gosubgroup/domain/core"
)

// DefaultMinCoverage is the smallest fraction of rows a subgroup must cover
const DefaultMinCoverage = 0.02

// Tolerance is the window within which two qualities count as equal
const Tolerance = 1e-5

// Coverage holds the counts a quality function needs
type Coverage struct {
	Size           int `json:"size"`
	Positives      int `json:"positives"`
	Total          int `json:"total"`
	TotalPositives int `json:"total_positives"`
}

// Rate returns the positive rate inside the subgroup
func (c Coverage) Rate() float64 {
	if c.Size == 0 {
		return math.NaN()
	}
	return float64(c.Positives) / float64(c.Size)
}

// BaseRate returns the positive rate in the whole table
func (c Coverage) BaseRate() float64 {
	if c.Total == 0 {
		return math.NaN()
	}
	return float64(c.TotalPositives) / float64(c.Total)
}

// Fraction returns |S| / N
func (c Coverage) Fraction() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Size) / float64(c.Total)
}

// Function maps a subgroup's coverage to a quality score
type Function interface {
	Name() string
	Evaluate(c Coverage) (float64, error)
	// OptimisticEstimate bounds the quality of every specialisation
	OptimisticEstimate(c Coverage) float64
}

// Standard is the family (|S|/N)^a * (p_S - p_N). A=1 is WRAcc.
type Standard struct {
	A float64
}

// WRAcc is weighted relative accuracy
var WRAcc Function = Standard{A: 1}

func (s Standard) Name() string {
	if s.A == 1 {
		return "wracc"
	}
	return fmt.Sprintf("standard(a=%g)", s.A)
}

// Evaluate returns ErrDegenerateSubgroup for an empty subgroup
func (s Standard) Evaluate(c Coverage) (float64, error) {
	if c.Size == 0 {
		return 0, core.ErrDegenerateSubgroup
	}
	return math.Pow(c.Fraction(), s.A) * (c.Rate() - c.BaseRate()), nil
}

// OptimisticEstimate is the quality of the subgroup restricted to its
// positive rows, which no specialisation can exceed.
func (s Standard) OptimisticEstimate(c Coverage) float64 {
	if c.Total == 0 || c.Positives == 0 {
		return 0
	}
	frac := float64(c.Positives) / float64(c.Total)
	return math.Pow(frac, s.A) * (1 - c.BaseRate())
}

// ParseFunction resolves a quality function by name
func ParseFunction(name string, a float64) (Function, error) {
	switch name {
	case "", "wracc":
		return WRAcc, nil
	case "standard":
		return Standard{A: a}, nil
	}
	return nil, fmt.Errorf("%w: unknown quality function %q", core.ErrInvalidOption, name)
}
