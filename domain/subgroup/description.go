package subgroup

import (
	"fmt"
	"strings"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
)

// Description is a conjunction of predicates kept in insertion order. It is
// persistent: Refine copies, so descriptions never share backing storage.
// The zero value is the catch-all description that matches every row.
type Description struct {
	preds []Predicate
}

// CatchAll returns the empty description
func CatchAll() Description { return Description{} }

// NewDescription builds a description, dropping repeated predicates.
func NewDescription(preds ...Predicate) Description {
	var d Description
	for _, p := range preds {
		if !d.Contains(p) {
			d = d.Refine(p)
		}
	}
	return d
}

// Refine returns a new description with p appended
func (d Description) Refine(p Predicate) Description {
	next := make([]Predicate, len(d.preds), len(d.preds)+1)
	copy(next, d.preds)
	return Description{preds: append(next, p)}
}

// Contains reports whether p is already present verbatim
func (d Description) Contains(p Predicate) bool {
	k := p.Key()
	for _, q := range d.preds {
		if q.Key() == k {
			return true
		}
	}
	return false
}

// Len returns the number of predicates
func (d Description) Len() int { return len(d.preds) }

// IsEmpty reports whether this is the catch-all description
func (d Description) IsEmpty() bool { return len(d.preds) == 0 }

// Predicates returns a copy of the predicates
func (d Description) Predicates() []Predicate {
	out := make([]Predicate, len(d.preds))
	copy(out, d.preds)
	return out
}

// Last returns the most recently added predicate
func (d Description) Last() (Predicate, bool) {
	if len(d.preds) == 0 {
		return Predicate{}, false
	}
	return d.preds[len(d.preds)-1], true
}

// String joins the predicates with " and "; the catch-all renders empty.
func (d Description) String() string {
	parts := make([]string, len(d.preds))
	for i, p := range d.preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, " and ")
}

// Key identifies the description for deduplication. Unlike String it never
// maps two different conjunctions to the same text.
func (d Description) Key() string {
	keys := make([]string, len(d.preds))
	for i, p := range d.preds {
		keys[i] = p.Key()
	}
	return strings.Join(keys, " & ")
}

// Equal compares two descriptions predicate by predicate
func (d Description) Equal(o Description) bool {
	return d.Key() == o.Key()
}

// SharesPredicate reports whether any predicate of d also appears in o
func (d Description) SharesPredicate(o Description) bool {
	for _, p := range d.preds {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

// Mask evaluates the conjunction on every row of the table.
func (d Description) Mask(table *dataset.Table) ([]bool, error) {
	mask := make([]bool, table.Len())
	for i := range mask {
		mask[i] = true
	}
	for _, p := range d.preds {
		col, err := table.Column(p.Attribute)
		if err != nil {
			return nil, err
		}
		if !p.compatible(col.Kind) {
			return nil, core.NewInputTypeError(col.Name, col.Kind)
		}
		for row := range mask {
			if mask[row] && !p.Matches(col, row) {
				mask[row] = false
			}
		}
	}
	return mask, nil
}

// Count returns the number of rows matching the description
func (d Description) Count(table *dataset.Table) (int, error) {
	mask, err := d.Mask(table)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n, nil
}

// GoString keeps %#v output readable in test failures
func (d Description) GoString() string {
	return fmt.Sprintf("subgroup.Description{%q}", d.String())
}
