package dataset

import (
	"fmt"
	"strings"

	"gosubgroup/domain/core"
)

// Target is a binary target column resolved to one flag per row.
type Target struct {
	Name      string
	Positive  []bool
	Positives int
}

// Len returns the number of rows
func (t *Target) Len() int { return len(t.Positive) }

// Rate returns the proportion of positive rows
func (t *Target) Rate() float64 {
	if len(t.Positive) == 0 {
		return 0
	}
	return float64(t.Positives) / float64(len(t.Positive))
}

// ResolveTarget coerces the named column to {0,1}. Numeric cells must be 0
// or 1, categorical cells one of 0/1/true/false, and no cell may be missing.
func (t *Table) ResolveTarget(name string) (*Target, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	target := &Target{Name: name, Positive: make([]bool, t.rows)}
	for row := 0; row < t.rows; row++ {
		if col.IsMissing(row) {
			return nil, fmt.Errorf("%w: %q has a missing value at row %d", core.ErrInvalidTarget, name, row)
		}
		positive, err := coerceBinary(col, row)
		if err != nil {
			return nil, fmt.Errorf("%w: %q row %d: %v", core.ErrInvalidTarget, name, row, err)
		}
		target.Positive[row] = positive
		if positive {
			target.Positives++
		}
	}
	return target, nil
}

func coerceBinary(col *Column, row int) (bool, error) {
	switch col.Kind {
	case KindBoolean:
		return col.Bools[row], nil
	case KindNumericFloat, KindNumericInt:
		v, _ := col.Float(row)
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, fmt.Errorf("value %v is not 0 or 1", v)
	case KindCategorical:
		switch strings.ToLower(strings.TrimSpace(col.Strings[row])) {
		case "1", "true", "yes":
			return true, nil
		case "0", "false", "no":
			return false, nil
		}
		return false, fmt.Errorf("value %q is not binary", col.Strings[row])
	}
	return false, fmt.Errorf("kind %s cannot be a target", col.Kind)
}
