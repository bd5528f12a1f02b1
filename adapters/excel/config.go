package excel

import "gosubgroup/domain/dataset"

// DefaultSheet is read when no sheet is configured
const DefaultSheet = "Sheet1"

// ReaderConfig controls how a CSV or XLSX file becomes a table
type ReaderConfig struct {
	Sheet string `json:"sheet" yaml:"sheet"`
	// NoHeader names the columns attribute0..attributeN
	NoHeader bool `json:"no_header" yaml:"no_header"`
	// MissingTokens are cell values read as missing, after trimming
	MissingTokens []string `json:"missing_tokens" yaml:"missing_tokens"`
	// Kinds forces the kind of the named columns instead of inferring it
	Kinds    map[string]dataset.ColumnKind `json:"kinds" yaml:"-"`
	Coercion CoercionConfig                `json:"coercion" yaml:"coercion"`
}

// DefaultReaderConfig returns sensible defaults for tabular files
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Sheet:         DefaultSheet,
		MissingTokens: []string{"", "?", "NA", "N/A", "NaN", "null"},
		Coercion:      DefaultCoercionConfig(),
	}
}
