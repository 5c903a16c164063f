package sphinxql

import (
	"github.com/spf13/cast"
)

// ResultSet holds the buffered outcome of one statement: rows for SELECT-like
// statements, an affected-row count for writes.
type ResultSet struct {
	columns      []string
	rows         [][]interface{}
	affectedRows int64
	cursor       int
}

// NewResultSet creates a result set. Each row must have one value per column.
func NewResultSet(columns []string, rows [][]interface{}, affectedRows int64) *ResultSet {
	return &ResultSet{
		columns:      columns,
		rows:         rows,
		affectedRows: affectedRows,
	}
}

// Columns returns the column names in server order.
func (r *ResultSet) Columns() []string {
	return r.columns
}

// Count returns the number of rows.
func (r *ResultSet) Count() int {
	return len(r.rows)
}

// AffectedRows returns the number of rows written by the statement.
func (r *ResultSet) AffectedRows() int64 {
	return r.affectedRows
}

// Row returns the i-th row.
func (r *ResultSet) Row(i int) (Row, bool) {
	if i < 0 || i >= len(r.rows) {
		return Row{}, false
	}
	return Row{columns: r.columns, values: r.rows[i]}, true
}

// Rows returns every row.
func (r *ResultSet) Rows() []Row {
	rows := make([]Row, len(r.rows))
	for i, values := range r.rows {
		rows[i] = Row{columns: r.columns, values: values}
	}
	return rows
}

// FetchAllAssoc returns every row keyed by column name.
func (r *ResultSet) FetchAllAssoc() []map[string]interface{} {
	result := make([]map[string]interface{}, len(r.rows))
	for i := range r.rows {
		row, _ := r.Row(i)
		result[i] = row.Map()
	}
	return result
}

// FetchAllNum returns every row as a positional slice.
func (r *ResultSet) FetchAllNum() [][]interface{} {
	return r.rows
}

// FetchAssoc returns the row under the cursor keyed by column name and
// advances the cursor.
func (r *ResultSet) FetchAssoc() (map[string]interface{}, bool) {
	row, ok := r.Row(r.cursor)
	if !ok {
		return nil, false
	}
	r.cursor++
	return row.Map(), true
}

// FetchNum returns the row under the cursor and advances the cursor.
func (r *ResultSet) FetchNum() ([]interface{}, bool) {
	row, ok := r.Row(r.cursor)
	if !ok {
		return nil, false
	}
	r.cursor++
	return row.values, true
}

// Reset rewinds the cursor.
func (r *ResultSet) Reset() {
	r.cursor = 0
}

// Row is a single result row.
type Row struct {
	columns []string
	values  []interface{}
}

// Get returns the value of column, or nil when the column is absent.
func (r Row) Get(column string) interface{} {
	for i, name := range r.columns {
		if name == column && i < len(r.values) {
			return r.values[i]
		}
	}
	return nil
}

// String returns the value of column as a string.
func (r Row) String(column string) string {
	return cast.ToString(r.Get(column))
}

// Int64 returns the value of column as an int64.
func (r Row) Int64(column string) (int64, error) {
	return cast.ToInt64E(r.Get(column))
}

// Float64 returns the value of column as a float64.
func (r Row) Float64(column string) (float64, error) {
	return cast.ToFloat64E(r.Get(column))
}

// Map returns the row keyed by column name.
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.columns))
	for i, name := range r.columns {
		if i < len(r.values) {
			m[name] = r.values[i]
		}
	}
	return m
}

// Values returns the row values in column order.
func (r Row) Values() []interface{} {
	return r.values
}

// MultiResultSet holds one ResultSet per statement of a batch.
type MultiResultSet struct {
	sets   []*ResultSet
	cursor int
}

// NewMultiResultSet creates a MultiResultSet from result sets in statement order.
func NewMultiResultSet(sets ...*ResultSet) *MultiResultSet {
	return &MultiResultSet{sets: sets}
}

// Len returns the number of result sets.
func (m *MultiResultSet) Len() int {
	return len(m.sets)
}

// Get returns the i-th result set.
func (m *MultiResultSet) Get(i int) (*ResultSet, bool) {
	if i < 0 || i >= len(m.sets) {
		return nil, false
	}
	return m.sets[i], true
}

// Next returns the result set under the cursor and advances it.
func (m *MultiResultSet) Next() (*ResultSet, bool) {
	set, ok := m.Get(m.cursor)
	if ok {
		m.cursor++
	}
	return set, ok
}

// All returns every result set.
func (m *MultiResultSet) All() []*ResultSet {
	return m.sets
}

// Reset rewinds the cursor.
func (m *MultiResultSet) Reset() {
	m.cursor = 0
}
