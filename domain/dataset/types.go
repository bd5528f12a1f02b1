package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// ColumnKind is the storage type of a column, fixed when the table is loaded.
type ColumnKind int

const (
	KindNumericFloat ColumnKind = iota
	KindNumericInt
	KindCategorical
	KindBoolean
	// KindTimestamp can be loaded but is not refinable by the search.
	KindTimestamp
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumericFloat:
		return "numeric_float"
	case KindNumericInt:
		return "numeric_int"
	case KindCategorical:
		return "categorical"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsNumeric reports whether values are compared with <= and >.
func (k ColumnKind) IsNumeric() bool {
	return k == KindNumericFloat || k == KindNumericInt
}

// IsNominal reports whether values are compared with == and !=.
func (k ColumnKind) IsNominal() bool {
	return k == KindCategorical || k == KindBoolean
}

// ParseColumnKind maps the names produced by type inference onto a kind.
func ParseColumnKind(s string) (ColumnKind, error) {
	switch s {
	case "numeric_float", "numeric", "float":
		return KindNumericFloat, nil
	case "numeric_int", "integer", "int":
		return KindNumericInt, nil
	case "categorical", "string", "category":
		return KindCategorical, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "timestamp":
		return KindTimestamp, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q", s)
	}
}

// Column holds the values of one named column. Exactly one value slice is
// populated, matching Kind. Missing marks absent cells and may be nil.
type Column struct {
	Name    string
	Kind    ColumnKind
	Floats  []float64
	Ints    []int64
	Strings []string
	Bools   []bool
	Times   []time.Time
	Missing []bool
}

// NewFloatColumn builds a numeric-float column. NaN cells are marked missing.
func NewFloatColumn(name string, values []float64) *Column {
	col := &Column{Name: name, Kind: KindNumericFloat, Floats: values}
	for i, v := range values {
		if v != v {
			col.markMissing(i)
		}
	}
	return col
}

func NewIntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindNumericInt, Ints: values}
}

func NewCategoricalColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindCategorical, Strings: values}
}

func NewBoolColumn(name string, values []bool) *Column {
	return &Column{Name: name, Kind: KindBoolean, Bools: values}
}

func NewTimeColumn(name string, values []time.Time) *Column {
	return &Column{Name: name, Kind: KindTimestamp, Times: values}
}

// WithMissing marks the given rows as missing and returns the column.
func (c *Column) WithMissing(rows ...int) *Column {
	for _, r := range rows {
		c.markMissing(r)
	}
	return c
}

func (c *Column) markMissing(row int) {
	if c.Missing == nil {
		c.Missing = make([]bool, c.Len())
	}
	c.Missing[row] = true
}

// Len returns the number of cells
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumericFloat:
		return len(c.Floats)
	case KindNumericInt:
		return len(c.Ints)
	case KindCategorical:
		return len(c.Strings)
	case KindBoolean:
		return len(c.Bools)
	case KindTimestamp:
		return len(c.Times)
	}
	return 0
}

// IsMissing reports whether the cell at row is absent
func (c *Column) IsMissing(row int) bool {
	return c.Missing != nil && c.Missing[row]
}

// Float returns a numeric cell widened to float64.
func (c *Column) Float(row int) (float64, bool) {
	if c.IsMissing(row) {
		return 0, false
	}
	switch c.Kind {
	case KindNumericFloat:
		return c.Floats[row], true
	case KindNumericInt:
		return float64(c.Ints[row]), true
	}
	return 0, false
}

// Nominal returns the textual form of a categorical or boolean cell.
func (c *Column) Nominal(row int) (string, bool) {
	if c.IsMissing(row) {
		return "", false
	}
	switch c.Kind {
	case KindCategorical:
		return c.Strings[row], true
	case KindBoolean:
		return FormatBool(c.Bools[row]), true
	}
	return "", false
}

// FormatBool renders boolean cells the way predicates print them
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Text renders a cell the way it would appear in a CSV file. Missing cells
// render as the empty string.
func (c *Column) Text(row int) string {
	if c.IsMissing(row) {
		return ""
	}
	switch c.Kind {
	case KindNumericFloat:
		return strconv.FormatFloat(c.Floats[row], 'g', -1, 64)
	case KindNumericInt:
		return strconv.FormatInt(c.Ints[row], 10)
	case KindCategorical:
		return c.Strings[row]
	case KindBoolean:
		return FormatBool(c.Bools[row])
	case KindTimestamp:
		return c.Times[row].UTC().Format("2006-01-02T15:04:05Z")
	}
	return ""
}
