package sphinxql

import (
	"context"
	"sort"
)

// MaxLimit is the LIMIT sent when only an offset is set. searchd needs an
// explicit row count together with an offset, and this value means no cap.
const MaxLimit int64 = 9999999999999

// Filter operators accepted by Where and Having.
const (
	OpEq        = "="
	OpNotEq     = "!="
	OpGreater   = ">"
	OpGreaterEq = ">="
	OpLess      = "<"
	OpLessEq    = "<="
	OpIn        = "IN"
	OpNotIn     = "NOT IN"
	OpBetween   = "BETWEEN"
)

// Sort directions.
const (
	Asc  = "ASC"
	Desc = "DESC"
)

type statementType int

const (
	typeNone statementType = iota
	typeSelect
	typeInsert
	typeReplace
	typeUpdate
	typeDelete
	typeRaw
)

var (
	defaultFullEscape = newEscapeTable(DefaultFullEscapeChars)
	defaultHalfEscape = newEscapeTable(DefaultHalfEscapeChars)
)

type filter struct {
	column   interface{}
	operator string
	value    interface{}
}

type matchEntry struct {
	column interface{}
	value  interface{}
	half   bool
}

type orderEntry struct {
	column    interface{}
	direction string
}

type option struct {
	name  string
	value interface{}
}

type setPair struct {
	column string
	value  interface{}
}

// SphinxQL accumulates the clauses of a single statement. A value must not be
// used from more than one goroutine at a time.
type SphinxQL struct {
	conn    Connection
	escaper *Escaper

	fullEscape *escapeTable
	halfEscape *escapeTable

	typ      statementType
	rawQuery string

	selects  []interface{}
	from     []interface{}
	fromSub  *SphinxQL
	fromFunc func(q *SphinxQL)

	matches            []matchEntry
	where              []filter
	groupBy            []interface{}
	groupNBy           *int
	withinGroupOrderBy []orderEntry
	having             *filter
	orderBy            []orderEntry
	offset             *int64
	limit              *int64
	options            []option
	facets             []*Facet

	into    string
	columns []interface{}
	values  [][]interface{}
	set     []setPair

	batch        *Batch
	lastCompiled string
	err          error
}

// New creates a builder bound to conn. conn may be nil for builders that are
// only compiled and never need to escape a string.
func New(conn Connection) *SphinxQL {
	return &SphinxQL{
		conn:       conn,
		escaper:    NewEscaper(conn),
		fullEscape: defaultFullEscape,
		halfEscape: defaultHalfEscape,
	}
}

// Connection returns the bound connection.
func (q *SphinxQL) Connection() Connection {
	return q.conn
}

// SetConnection binds conn to the builder.
func (q *SphinxQL) SetConnection(conn Connection) *SphinxQL {
	q.conn = conn
	q.escaper = NewEscaper(conn)
	return q
}

// Escaper returns the escaper used for literals and identifiers.
func (q *SphinxQL) Escaper() *Escaper {
	return q.escaper
}

// derive creates a builder sharing the connection and escape tables of q.
func (q *SphinxQL) derive() *SphinxQL {
	sub := New(q.conn)
	sub.fullEscape = q.fullEscape
	sub.halfEscape = q.halfEscape
	return sub
}

// Query sets a raw statement. Compile returns it unchanged.
func (q *SphinxQL) Query(sql string) *SphinxQL {
	q.Reset()
	q.typ = typeRaw
	q.rawQuery = sql
	return q
}

// Select starts a SELECT. Without columns every column is selected.
func (q *SphinxQL) Select(columns ...interface{}) *SphinxQL {
	q.Reset()
	q.typ = typeSelect
	q.selects = flatten(columns)
	return q
}

// Insert starts an INSERT.
func (q *SphinxQL) Insert() *SphinxQL {
	q.Reset()
	q.typ = typeInsert
	return q
}

// Replace starts a REPLACE.
func (q *SphinxQL) Replace() *SphinxQL {
	q.Reset()
	q.typ = typeReplace
	return q
}

// Update starts an UPDATE of index.
func (q *SphinxQL) Update(index string) *SphinxQL {
	q.Reset()
	q.typ = typeUpdate
	q.into = index
	return q
}

// Delete starts a DELETE.
func (q *SphinxQL) Delete() *SphinxQL {
	q.Reset()
	q.typ = typeDelete
	return q
}

// From sets the indexes to read from. A single *SphinxQL or func(*SphinxQL)
// argument is compiled as a subquery.
func (q *SphinxQL) From(indexes ...interface{}) *SphinxQL {
	q.from, q.fromSub, q.fromFunc = nil, nil, nil

	if len(indexes) == 1 {
		switch sub := indexes[0].(type) {
		case *SphinxQL:
			q.fromSub = sub
			return q
		case func(q *SphinxQL):
			q.fromFunc = sub
			return q
		}
	}

	q.from = flatten(indexes)
	return q
}

// Match adds a full-text condition. column is empty for all fields, a field
// name, a []string of fields, or a *MatchBuilder or func(*MatchBuilder) whose
// output precedes value. value is escaped with EscapeMatch.
func (q *SphinxQL) Match(column, value interface{}) *SphinxQL {
	q.matches = append(q.matches, matchEntry{column: column, value: value})
	return q
}

// MatchHalf is Match with value escaped by HalfEscapeMatch, which keeps user
// operators usable.
func (q *SphinxQL) MatchHalf(column, value interface{}) *SphinxQL {
	q.matches = append(q.matches, matchEntry{column: column, value: value, half: true})
	return q
}

// Where adds a filter. Filters are joined with AND. An empty operator means OpEq.
func (q *SphinxQL) Where(column interface{}, operator string, value interface{}) *SphinxQL {
	q.where = append(q.where, filter{column: column, operator: operator, value: value})
	return q
}

// GroupBy adds grouping columns.
func (q *SphinxQL) GroupBy(columns ...interface{}) *SphinxQL {
	q.groupBy = append(q.groupBy, flatten(columns)...)
	return q
}

// GroupNBy keeps the n best rows of every group.
func (q *SphinxQL) GroupNBy(n int) *SphinxQL {
	q.groupNBy = &n
	return q
}

// WithinGroupOrderBy sorts the rows inside each group.
func (q *SphinxQL) WithinGroupOrderBy(column interface{}, direction string) *SphinxQL {
	q.withinGroupOrderBy = append(q.withinGroupOrderBy, orderEntry{column: column, direction: direction})
	return q
}

// Having sets the HAVING condition. Only one condition is supported, so a
// second call replaces the first.
func (q *SphinxQL) Having(column interface{}, operator string, value interface{}) *SphinxQL {
	q.having = &filter{column: column, operator: operator, value: value}
	return q
}

// OrderBy adds a sort column. An empty direction leaves the server default.
func (q *SphinxQL) OrderBy(column interface{}, direction string) *SphinxQL {
	q.orderBy = append(q.orderBy, orderEntry{column: column, direction: direction})
	return q
}

// Offset sets the number of rows to skip.
func (q *SphinxQL) Offset(n int) *SphinxQL {
	v := int64(n)
	q.offset = &v
	return q
}

// Limit sets the number of rows to return.
func (q *SphinxQL) Limit(n int) *SphinxQL {
	v := int64(n)
	q.limit = &v
	return q
}

// Option adds an OPTION entry. A map value renders as (k=v, ...) and an
// Expression verbatim; anything else is quoted.
func (q *SphinxQL) Option(name string, value interface{}) *SphinxQL {
	q.options = append(q.options, option{name: name, value: value})
	return q
}

// Facet appends a FACET clause.
func (q *SphinxQL) Facet(f *Facet) *SphinxQL {
	q.facets = append(q.facets, f)
	return q
}

// Into sets the index written by INSERT and REPLACE.
func (q *SphinxQL) Into(index string) *SphinxQL {
	q.into = index
	return q
}

// Columns sets the INSERT and REPLACE column list.
func (q *SphinxQL) Columns(columns ...interface{}) *SphinxQL {
	q.columns = flatten(columns)
	return q
}

// Values appends one row of INSERT or REPLACE values.
func (q *SphinxQL) Values(values ...interface{}) *SphinxQL {
	q.values = append(q.values, values)
	return q
}

// Value sets a single column. For INSERT and REPLACE it extends the column
// list and the first row; for UPDATE it adds to the SET list.
func (q *SphinxQL) Value(column string, value interface{}) *SphinxQL {
	if q.typ == typeInsert || q.typ == typeReplace {
		q.columns = append(q.columns, column)
		if len(q.values) == 0 {
			q.values = append(q.values, nil)
		}
		q.values[0] = append(q.values[0], value)
		return q
	}

	for i := range q.set {
		if q.set[i].column == column {
			q.set[i].value = value
			return q
		}
	}
	q.set = append(q.set, setPair{column: column, value: value})
	return q
}

// Set sets several columns at once, in sorted column order. For INSERT and
// REPLACE, a map whose keys equal the current columns appends a new row.
func (q *SphinxQL) Set(values map[string]interface{}) *SphinxQL {
	keys := sortedKeys(values)

	if (q.typ == typeInsert || q.typ == typeReplace) && sameColumns(q.columns, keys) {
		row := make([]interface{}, len(keys))
		for i, key := range keys {
			row[i] = values[key]
		}
		q.values = append(q.values, row)
		return q
	}

	for _, key := range keys {
		q.Value(key, values[key])
	}
	return q
}

// Reset clears every clause and the statement type. The connection, escape
// tables and batch membership are kept.
func (q *SphinxQL) Reset() *SphinxQL {
	q.typ = typeNone
	q.rawQuery = ""
	q.selects = nil
	q.from, q.fromSub, q.fromFunc = nil, nil, nil
	q.ResetMatch()
	q.ResetWhere()
	q.ResetGroupBy()
	q.ResetWithinGroupOrderBy()
	q.ResetHaving()
	q.ResetOrderBy()
	q.ResetOptions()
	q.ResetFacets()
	q.offset, q.limit = nil, nil
	q.into = ""
	q.columns = nil
	q.values = nil
	q.set = nil
	q.err = nil
	return q
}

// ResetWhere clears the WHERE filters.
func (q *SphinxQL) ResetWhere() *SphinxQL {
	q.where = nil
	return q
}

// ResetMatch clears the MATCH conditions.
func (q *SphinxQL) ResetMatch() *SphinxQL {
	q.matches = nil
	return q
}

// ResetGroupBy clears GROUP BY and GROUP n BY.
func (q *SphinxQL) ResetGroupBy() *SphinxQL {
	q.groupBy = nil
	q.groupNBy = nil
	return q
}

// ResetWithinGroupOrderBy clears WITHIN GROUP ORDER BY.
func (q *SphinxQL) ResetWithinGroupOrderBy() *SphinxQL {
	q.withinGroupOrderBy = nil
	return q
}

// ResetFacets clears the facets.
func (q *SphinxQL) ResetFacets() *SphinxQL {
	q.facets = nil
	return q
}

// ResetHaving clears HAVING.
func (q *SphinxQL) ResetHaving() *SphinxQL {
	q.having = nil
	return q
}

// ResetOrderBy clears ORDER BY.
func (q *SphinxQL) ResetOrderBy() *SphinxQL {
	q.orderBy = nil
	return q
}

// ResetOptions clears OPTION.
func (q *SphinxQL) ResetOptions() *SphinxQL {
	q.options = nil
	return q
}

// Clone returns a copy whose clause lists can be changed without affecting q.
// The copy is not part of q's batch.
func (q *SphinxQL) Clone() *SphinxQL {
	c := *q
	c.batch = nil

	c.selects = cloneSlice(q.selects)
	c.from = cloneSlice(q.from)
	c.matches = cloneSlice(q.matches)
	c.where = cloneSlice(q.where)
	c.groupBy = cloneSlice(q.groupBy)
	c.withinGroupOrderBy = cloneSlice(q.withinGroupOrderBy)
	c.orderBy = cloneSlice(q.orderBy)
	c.options = cloneSlice(q.options)
	c.facets = cloneSlice(q.facets)
	c.columns = cloneSlice(q.columns)
	c.set = cloneSlice(q.set)

	if q.values != nil {
		c.values = make([][]interface{}, len(q.values))
		for i, row := range q.values {
			c.values[i] = cloneSlice(row)
		}
	}
	if q.having != nil {
		h := *q.having
		c.having = &h
	}
	if q.groupNBy != nil {
		n := *q.groupNBy
		c.groupNBy = &n
	}
	if q.offset != nil {
		n := *q.offset
		c.offset = &n
	}
	if q.limit != nil {
		n := *q.limit
		c.limit = &n
	}
	return &c
}

// TransactionBegin starts a transaction on the connection.
func (q *SphinxQL) TransactionBegin(ctx context.Context) error {
	return q.exec(ctx, "BEGIN")
}

// TransactionCommit commits the current transaction.
func (q *SphinxQL) TransactionCommit(ctx context.Context) error {
	return q.exec(ctx, "COMMIT")
}

// TransactionRollback rolls back the current transaction.
func (q *SphinxQL) TransactionRollback(ctx context.Context) error {
	return q.exec(ctx, "ROLLBACK")
}

func (q *SphinxQL) exec(ctx context.Context, sql string) error {
	if q.conn == nil {
		return ErrNoConnection
	}
	_, err := q.conn.Query(ctx, sql)
	return err
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// flatten expands []string and []interface{} arguments in place.
func flatten(values []interface{}) []interface{} {
	var result []interface{}
	for _, v := range values {
		switch list := v.(type) {
		case []string:
			for _, s := range list {
				result = append(result, s)
			}
		case []interface{}:
			result = append(result, flatten(list)...)
		default:
			result = append(result, v)
		}
	}
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameColumns(columns []interface{}, keys []string) bool {
	if len(columns) == 0 || len(columns) != len(keys) {
		return false
	}
	for i, c := range columns {
		if s, ok := c.(string); !ok || s != keys[i] {
			return false
		}
	}
	return true
}
