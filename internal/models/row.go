package models

// Row is a single parsed record from a delimited input, keyed by column name.
// The header slice is shared by every row of one file and preserves column order.
// Rows are created once during parsing and never mutated afterwards.
type Row struct {
	Header []string          // Header lists the column names in file order.
	Values map[string]string // Values maps a column name to its raw string value.
}

// Get returns the raw value of the named column, or the empty string
// when the column is absent.
func (r Row) Get(column string) string {
	return r.Values[column]
}
