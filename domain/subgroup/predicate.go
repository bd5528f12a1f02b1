package subgroup

import (
	"fmt"
	"strconv"

	"gosubgroup/domain/dataset"
)

// Operator is the comparison applied by a predicate
type Operator int

const (
	OpLessEqual Operator = iota
	OpGreater
	OpEqual
	OpNotEqual
)

func (o Operator) String() string {
	switch o {
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Predicate is an atomic comparison over one attribute. Numeric predicates
// carry Threshold, nominal predicates carry Value.
type Predicate struct {
	Attribute string
	Op        Operator
	Threshold float64
	Value     string
}

// LessEqual builds "attribute <= x"
func LessEqual(attribute string, x float64) Predicate {
	return Predicate{Attribute: attribute, Op: OpLessEqual, Threshold: x}
}

// Greater builds "attribute > x"
func Greater(attribute string, x float64) Predicate {
	return Predicate{Attribute: attribute, Op: OpGreater, Threshold: x}
}

// Equal builds "attribute == 'v'"
func Equal(attribute, v string) Predicate {
	return Predicate{Attribute: attribute, Op: OpEqual, Value: v}
}

// NotEqual builds "attribute != 'v'"
func NotEqual(attribute, v string) Predicate {
	return Predicate{Attribute: attribute, Op: OpNotEqual, Value: v}
}

// IsNumeric reports whether the predicate compares against a threshold
func (p Predicate) IsNumeric() bool {
	return p.Op == OpLessEqual || p.Op == OpGreater
}

// String renders the predicate. Nominal literals are quoted, thresholds are not.
func (p Predicate) String() string {
	if p.IsNumeric() {
		return fmt.Sprintf("%s %s %s", p.Attribute, p.Op, FormatThreshold(p.Threshold))
	}
	return fmt.Sprintf("%s %s '%s'", p.Attribute, p.Op, p.Value)
}

// Key is an unambiguous encoding of the predicate: attribute and value are
// quoted, so literals containing quotes or " and " cannot collide.
func (p Predicate) Key() string {
	if p.IsNumeric() {
		return strconv.Quote(p.Attribute) + " " + p.Op.String() + " " + FormatThreshold(p.Threshold)
	}
	return strconv.Quote(p.Attribute) + " " + p.Op.String() + " " + strconv.Quote(p.Value)
}

// FormatThreshold prints the shortest representation that round-trips
func FormatThreshold(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// Matches evaluates the predicate on one row of col. Missing cells fail
// every comparison except !=.
func (p Predicate) Matches(col *dataset.Column, row int) bool {
	if col.IsMissing(row) {
		return p.Op == OpNotEqual
	}
	switch p.Op {
	case OpLessEqual:
		v, ok := col.Float(row)
		return ok && v <= p.Threshold
	case OpGreater:
		v, ok := col.Float(row)
		return ok && v > p.Threshold
	case OpEqual:
		s, ok := col.Nominal(row)
		return ok && s == p.Value
	case OpNotEqual:
		s, ok := col.Nominal(row)
		return !ok || s != p.Value
	}
	return false
}

// compatible reports whether the predicate's operator applies to kind
func (p Predicate) compatible(kind dataset.ColumnKind) bool {
	if p.IsNumeric() {
		return kind.IsNumeric()
	}
	return kind.IsNominal()
}
