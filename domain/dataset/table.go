package dataset

import (
	"fmt"
	"strings"

	"gosubgroup/domain/core"
)

// Table is a rectangular set of typed columns. It is never mutated after
// NewTable returns, so it can be shared freely between searches.
type Table struct {
	name    string
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable validates that column names are unique and lengths agree.
func NewTable(name string, columns ...*Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", core.ErrInvalidTable)
	}

	t := &Table{
		name:    name,
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
		rows:    columns[0].Len(),
	}
	for _, col := range columns {
		if col == nil || strings.TrimSpace(col.Name) == "" {
			return nil, fmt.Errorf("%w: unnamed column", core.ErrInvalidTable)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrInvalidTable, col.Name)
		}
		if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d",
				core.ErrInvalidTable, col.Name, col.Len(), t.rows)
		}
		if col.Missing != nil && len(col.Missing) != t.rows {
			return nil, fmt.Errorf("%w: column %q has a malformed missing mask", core.ErrInvalidTable, col.Name)
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// Name returns the table name, usually the source file
func (t *Table) Name() string { return t.name }

// Len returns the number of rows
func (t *Table) Len() int { return t.rows }

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return t.columns[i], nil
}

// HasColumn reports whether the table has a column with the given name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Columns returns the columns in load order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns column names in load order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Features returns every column name except the excluded ones, in load order.
func (t *Table) Features(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	var names []string
	for _, c := range t.columns {
		if !skip[c.Name] {
			names = append(names, c.Name)
		}
	}
	return names
}

// Replace returns a new table where the named columns are dropped and the
// extra columns appended. The receiver is left untouched.
func (t *Table) Replace(drop []string, extra ...*Column) (*Table, error) {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		if !t.HasColumn(d) {
			return nil, core.NewColumnNotFoundError(d)
		}
		skip[d] = true
	}
	cols := make([]*Column, 0, len(t.columns)+len(extra))
	for _, c := range t.columns {
		if !skip[c.Name] {
			cols = append(cols, c)
		}
	}
	cols = append(cols, extra...)
	return NewTable(t.name, cols...)
}

// Substitute returns a new table where each given column takes the place of
// the existing column with the same name.
func (t *Table) Substitute(cols ...*Column) (*Table, error) {
	replaced := make([]*Column, len(t.columns))
	copy(replaced, t.columns)
	for _, c := range cols {
		i, ok := t.index[c.Name]
		if !ok {
			return nil, core.NewColumnNotFoundError(c.Name)
		}
		replaced[i] = c
	}
	return NewTable(t.name, replaced...)
}

// Fingerprint hashes the schema and every cell, so two loads of the same
// file produce the same value.
func (t *Table) Fingerprint() core.DatasetHash {
	var b strings.Builder
	for _, c := range t.columns {
		fmt.Fprintf(&b, "%s:%s\n", c.Name, c.Kind)
		for row := 0; row < t.rows; row++ {
			b.WriteString(t.cellString(c, row))
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	return core.DatasetHash(core.NewHash([]byte(b.String())))
}

func (t *Table) cellString(c *Column, row int) string {
	if c.IsMissing(row) {
		return "<missing>"
	}
	return c.Text(row)
}
