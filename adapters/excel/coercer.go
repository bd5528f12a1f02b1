package excel

import (
	"math"
	"strconv"
	"strings"
	"time"

	"gosubgroup/domain/dataset"
)

// CoercionConfig defines the inference thresholds. A ratio is the share of
// present cells that must parse for the column to take that kind; cells that
// then fail to parse are read as missing.
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold" yaml:"numeric_threshold"`
	BooleanThreshold   float64 `json:"boolean_threshold" yaml:"boolean_threshold"`
	TimestampThreshold float64 `json:"timestamp_threshold" yaml:"timestamp_threshold"`
	// NormalizeStrings lower-cases categorical values
	NormalizeStrings bool `json:"normalize_strings" yaml:"normalize_strings"`
}

// DefaultCoercionConfig only accepts a kind when every cell parses
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   1,
		BooleanThreshold:   1,
		TimestampThreshold: 1,
	}
}

// TypeCoercer infers column kinds from raw cells and builds columns
type TypeCoercer struct {
	config CoercionConfig
}

func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis counts how many present cells parse as each kind
type TypeAnalysis struct {
	PresentCount   int     `json:"present_count"`
	IntegerCount   int     `json:"integer_count"`
	NumericCount   int     `json:"numeric_count"`
	BooleanCount   int     `json:"boolean_count"`
	TimestampCount int     `json:"timestamp_count"`
	NumericRatio   float64 `json:"numeric_ratio"`
	BooleanRatio   float64 `json:"boolean_ratio"`
	TimestampRatio float64 `json:"timestamp_ratio"`
}

// Analyze inspects cells; missing[i] marks cells that are already absent
func (c *TypeCoercer) Analyze(cells []string, missing []bool) TypeAnalysis {
	var a TypeAnalysis
	for i, cell := range cells {
		if missing[i] {
			continue
		}
		a.PresentCount++
		if _, ok := parseInt(cell); ok {
			a.IntegerCount++
		}
		if _, ok := parseNumeric(cell); ok {
			a.NumericCount++
		}
		if _, ok := parseBoolean(cell); ok {
			a.BooleanCount++
		}
		if _, ok := parseTimestamp(cell); ok {
			a.TimestampCount++
		}
	}
	if a.PresentCount > 0 {
		n := float64(a.PresentCount)
		a.NumericRatio = float64(a.NumericCount) / n
		a.BooleanRatio = float64(a.BooleanCount) / n
		a.TimestampRatio = float64(a.TimestampCount) / n
	}
	return a
}

// Infer picks a kind: numeric first (integer when every numeric cell is
// whole), then boolean, then timestamp, else categorical.
func (c *TypeCoercer) Infer(a TypeAnalysis) dataset.ColumnKind {
	if a.PresentCount == 0 {
		return dataset.KindCategorical
	}
	if a.NumericRatio >= c.config.NumericThreshold {
		if a.IntegerCount == a.NumericCount {
			return dataset.KindNumericInt
		}
		return dataset.KindNumericFloat
	}
	if a.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.KindBoolean
	}
	if a.TimestampRatio >= c.config.TimestampThreshold {
		return dataset.KindTimestamp
	}
	return dataset.KindCategorical
}

// Build converts cells into a column of the given kind
func (c *TypeCoercer) Build(name string, kind dataset.ColumnKind, cells []string, missing []bool) *dataset.Column {
	n := len(cells)
	absent := make([]int, 0)
	var col *dataset.Column

	switch kind {
	case dataset.KindNumericInt:
		values := make([]int64, n)
		for i, cell := range cells {
			v, ok := parseInt(cell)
			if missing[i] || !ok {
				absent = append(absent, i)
				continue
			}
			values[i] = v
		}
		col = dataset.NewIntColumn(name, values)
	case dataset.KindNumericFloat:
		values := make([]float64, n)
		for i, cell := range cells {
			v, ok := parseNumeric(cell)
			if missing[i] || !ok {
				absent = append(absent, i)
				continue
			}
			values[i] = v
		}
		col = dataset.NewFloatColumn(name, values)
	case dataset.KindBoolean:
		values := make([]bool, n)
		for i, cell := range cells {
			v, ok := parseBoolean(cell)
			if missing[i] || !ok {
				absent = append(absent, i)
				continue
			}
			values[i] = v
		}
		col = dataset.NewBoolColumn(name, values)
	case dataset.KindTimestamp:
		values := make([]time.Time, n)
		for i, cell := range cells {
			v, ok := parseTimestamp(cell)
			if missing[i] || !ok {
				absent = append(absent, i)
				continue
			}
			values[i] = v
		}
		col = dataset.NewTimeColumn(name, values)
	default:
		values := make([]string, n)
		for i, cell := range cells {
			if missing[i] {
				absent = append(absent, i)
				continue
			}
			values[i] = c.normalize(cell)
		}
		col = dataset.NewCategoricalColumn(name, values)
	}
	return col.WithMissing(absent...)
}

func (c *TypeCoercer) normalize(s string) string {
	s = strings.TrimSpace(s)
	if c.config.NormalizeStrings {
		s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	return s
}

func parseInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v, err == nil
}

// parseNumeric accepts plain and scientific notation, accounting-style
// negatives "(12.5)" and a leading currency symbol.
func parseNumeric(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}
	for _, symbol := range []string{"$", "€", "£", "¥"} {
		clean = strings.TrimPrefix(clean, symbol)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func parseBoolean(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	}
	return false, false
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-Jan-2006",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
