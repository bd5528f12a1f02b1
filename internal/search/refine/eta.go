// Package refine enumerates the one-step specialisations of a description.
package refine

import (
	"iter"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/subgroup"
)

// DefaultChunks is the number of cut points tried per numeric feature
const DefaultChunks = 5

// Config controls numeric splitting
type Config struct {
	Chunks   int
	Schedule Schedule
}

// DefaultConfig returns five reciprocal cut points
func DefaultConfig() Config {
	return Config{Chunks: DefaultChunks, Schedule: Reciprocal}
}

// Refinements returns the children of seed over the given features. Feature
// kinds and the seed are validated before anything is produced, so an
// unsupported column fails here rather than midway through the sequence.
// The returned sequence is lazy and may be ranged over once.
func Refinements(seed subgroup.Description, table *dataset.Table, features []string, cfg Config) (iter.Seq[subgroup.Description], error) {
	cols := make([]*dataset.Column, len(features))
	for i, name := range features {
		col, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		if !col.Kind.IsNumeric() && !col.Kind.IsNominal() {
			return nil, core.NewInputTypeError(name, col.Kind)
		}
		cols[i] = col
	}

	mask, err := seed.Mask(table)
	if err != nil {
		return nil, err
	}

	chunks := cfg.Chunks
	if chunks <= 0 {
		chunks = DefaultChunks
	}

	consumed := false
	return func(yield func(subgroup.Description) bool) {
		if consumed {
			return
		}
		consumed = true

		emitted := make(map[string]bool)
		emit := func(p subgroup.Predicate) bool {
			key := p.String()
			if emitted[key] || seed.Contains(p) {
				return true
			}
			emitted[key] = true
			return yield(seed.Refine(p))
		}

		for _, col := range cols {
			switch {
			case col.Kind.IsNumeric():
				for _, x := range CutPoints(numericValues(col, mask), chunks, cfg.Schedule) {
					if !emit(subgroup.LessEqual(col.Name, x)) {
						return
					}
					if !emit(subgroup.Greater(col.Name, x)) {
						return
					}
				}
			case col.Kind.IsNominal():
				for _, v := range distinctValues(col, mask) {
					if !emit(subgroup.Equal(col.Name, v)) {
						return
					}
					if !emit(subgroup.NotEqual(col.Name, v)) {
						return
					}
				}
			}
		}
	}, nil
}

// numericValues collects non-missing values of rows selected by mask
func numericValues(col *dataset.Column, mask []bool) []float64 {
	var values []float64
	for row, in := range mask {
		if !in {
			continue
		}
		if v, ok := col.Float(row); ok {
			values = append(values, v)
		}
	}
	return values
}

// distinctValues lists values in order of first appearance
func distinctValues(col *dataset.Column, mask []bool) []string {
	seen := make(map[string]bool)
	var values []string
	for row, in := range mask {
		if !in {
			continue
		}
		v, ok := col.Nominal(row)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

// SearchSpace lists every atomic predicate over features on the whole
// table, in generation order. Strategies that combine selectors use it.
func SearchSpace(table *dataset.Table, features []string, cfg Config) ([]subgroup.Predicate, error) {
	seq, err := Refinements(subgroup.CatchAll(), table, features, cfg)
	if err != nil {
		return nil, err
	}
	var preds []subgroup.Predicate
	for d := range seq {
		p, _ := d.Last()
		preds = append(preds, p)
	}
	return preds, nil
}
