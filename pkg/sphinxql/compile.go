package sphinxql

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Compile renders the statement. A builder without a statement type compiles
// to the empty string.
func (q *SphinxQL) Compile() (string, error) {
	if q.err != nil {
		return "", q.err
	}

	var (
		query string
		err   error
	)

	switch q.typ {
	case typeSelect:
		query, err = q.compileSelect()
	case typeInsert, typeReplace:
		query, err = q.compileInsert()
	case typeUpdate:
		query, err = q.compileUpdate()
	case typeDelete:
		query, err = q.compileDelete()
	case typeRaw:
		query = q.rawQuery
	}
	if err != nil {
		return "", err
	}

	q.lastCompiled = query
	return query, nil
}

// GetCompiled returns the result of the last successful Compile.
func (q *SphinxQL) GetCompiled() string {
	return q.lastCompiled
}

// Execute compiles the statement and runs it on the connection.
func (q *SphinxQL) Execute(ctx context.Context) (*ResultSet, error) {
	query, err := q.Compile()
	if err != nil {
		return nil, err
	}
	if q.conn == nil {
		return nil, ErrNoConnection
	}
	return q.conn.Query(ctx, query)
}

func (q *SphinxQL) compileSelect() (string, error) {
	var query strings.Builder

	query.WriteString("SELECT ")
	if len(q.selects) > 0 {
		query.WriteString(strings.Join(q.escaper.QuoteIdentifierArr(q.selects), ", "))
		query.WriteString(" ")
	} else {
		query.WriteString("* ")
	}

	from, err := q.compileFrom()
	if err != nil {
		return "", err
	}
	query.WriteString(from)

	match, err := q.compileMatch()
	if err != nil {
		return "", err
	}
	query.WriteString(match)

	where, err := q.compileWhere()
	if err != nil {
		return "", err
	}
	query.WriteString(where)

	if len(q.groupBy) > 0 {
		query.WriteString("GROUP ")
		if q.groupNBy != nil {
			query.WriteString(strconv.Itoa(*q.groupNBy) + " ")
		}
		query.WriteString("BY " + strings.Join(q.escaper.QuoteIdentifierArr(q.groupBy), ", ") + " ")
	}

	if len(q.withinGroupOrderBy) > 0 {
		query.WriteString("WITHIN GROUP ORDER BY " + q.compileOrder(q.withinGroupOrderBy) + " ")
	}

	if q.having != nil {
		having, err := q.compileFilter(*q.having)
		if err != nil {
			return "", err
		}
		query.WriteString("HAVING " + having + " ")
	}

	if len(q.orderBy) > 0 {
		query.WriteString("ORDER BY " + q.compileOrder(q.orderBy) + " ")
	}

	query.WriteString(compileLimit(q.offset, q.limit))

	if len(q.options) > 0 {
		options, err := q.compileOptions()
		if err != nil {
			return "", err
		}
		query.WriteString(options)
	}

	if len(q.facets) > 0 {
		facets := make([]string, 0, len(q.facets))
		for _, f := range q.facets {
			facet, err := q.compileFacet(f)
			if err != nil {
				return "", err
			}
			facets = append(facets, facet)
		}
		query.WriteString(strings.Join(facets, " "))
	}

	return strings.TrimSpace(query.String()), nil
}

func (q *SphinxQL) compileFrom() (string, error) {
	switch {
	case q.fromFunc != nil:
		sub := q.derive()
		q.fromFunc(sub)
		compiled, err := sub.Compile()
		if err != nil {
			return "", err
		}
		return "FROM (" + compiled + ") ", nil
	case q.fromSub != nil:
		compiled, err := q.fromSub.Compile()
		if err != nil {
			return "", err
		}
		return "FROM (" + compiled + ") ", nil
	case len(q.from) > 0:
		return "FROM " + strings.Join(q.escaper.QuoteIdentifierArr(q.from), ", ") + " ", nil
	}
	return "", nil
}

// compileMatch renders WHERE MATCH(...). Every entry is escaped for the MATCH
// language, parenthesised, and the joined text is escaped again as a string
// literal by the connection.
func (q *SphinxQL) compileMatch() (string, error) {
	if len(q.matches) == 0 {
		return "", nil
	}

	matched := make([]string, 0, len(q.matches))
	for _, entry := range q.matches {
		var pre strings.Builder

		switch column := entry.column.(type) {
		case nil:
		case *MatchBuilder:
			pre.WriteString(column.Compile())
		case func(m *MatchBuilder):
			sub := NewMatch(q)
			column(sub)
			pre.WriteString(sub.Compile())
		case MatchFunc:
			sub := NewMatch(q)
			column(sub)
			pre.WriteString(sub.Compile())
		case []string:
			if len(column) > 0 {
				pre.WriteString("@(" + strings.Join(column, ",") + ") ")
			}
		default:
			if name := cast.ToString(column); name != "" {
				pre.WriteString("@" + name + " ")
			}
		}

		if entry.half {
			pre.WriteString(q.HalfEscapeMatch(entry.value))
		} else {
			pre.WriteString(q.EscapeMatch(entry.value))
		}

		if pre.Len() > 0 {
			matched = append(matched, "("+pre.String()+")")
		}
	}

	escaped, err := q.escaper.Quote(strings.TrimSpace(strings.Join(matched, " ")))
	if err != nil {
		return "", err
	}
	return "WHERE MATCH(" + escaped + ") ", nil
}

// compileWhere renders the plain filters. They follow MATCH with AND when a
// MATCH clause already opened WHERE.
func (q *SphinxQL) compileWhere() (string, error) {
	if len(q.where) == 0 {
		return "", nil
	}

	conditions := make([]string, 0, len(q.where))
	for _, f := range q.where {
		condition, err := q.compileFilter(f)
		if err != nil {
			return "", err
		}
		conditions = append(conditions, condition)
	}

	prefix := "WHERE "
	if len(q.matches) > 0 {
		prefix = "AND "
	}
	return prefix + strings.Join(conditions, " AND ") + " ", nil
}

func (q *SphinxQL) compileFilter(f filter) (string, error) {
	operator := strings.ToUpper(strings.TrimSpace(f.operator))
	if operator == "" {
		operator = OpEq
	}

	column := q.escaper.QuoteIdentifier(f.column)
	if name, ok := f.column.(string); ok && name == "id" {
		column = "id"
	}

	switch operator {
	case OpBetween:
		bounds, ok := toList(f.value)
		if !ok || len(bounds) != 2 {
			return "", fmt.Errorf("%w: BETWEEN on %s needs exactly two values", ErrInvalidFilter, column)
		}
		low, err := q.escaper.Quote(bounds[0])
		if err != nil {
			return "", err
		}
		high, err := q.escaper.Quote(bounds[1])
		if err != nil {
			return "", err
		}
		return column + " BETWEEN " + low + " AND " + high, nil

	case OpIn, OpNotIn:
		list, ok := toList(f.value)
		if !ok || len(list) == 0 {
			return "", fmt.Errorf("%w: %s on %s needs a non-empty list", ErrInvalidFilter, operator, column)
		}
		quoted, err := q.escaper.QuoteArr(list)
		if err != nil {
			return "", err
		}
		return column + " " + operator + " (" + strings.Join(quoted, ", ") + ")", nil
	}

	value, err := q.escaper.Quote(f.value)
	if err != nil {
		return "", err
	}
	return column + " " + operator + " " + value, nil
}

func (q *SphinxQL) compileOrder(entries []orderEntry) string {
	parts := make([]string, len(entries))
	for i, entry := range entries {
		parts[i] = q.escaper.QuoteIdentifier(entry.column)
		if entry.direction != "" {
			parts[i] += " " + normalizeDirection(entry.direction)
		}
	}
	return strings.Join(parts, ", ")
}

func (q *SphinxQL) compileOptions() (string, error) {
	options := make([]string, 0, len(q.options))
	for _, opt := range q.options {
		var value string
		switch v := opt.value.(type) {
		case Expression:
			value = v.Value()
		case *Expression:
			value = v.Value()
		case map[string]interface{}:
			value = compileOptionMap(v)
		case map[string]int:
			value = compileOptionMap(v)
		case map[string]string:
			value = compileOptionMap(v)
		default:
			quoted, err := q.escaper.Quote(v)
			if err != nil {
				return "", err
			}
			value = quoted
		}
		options = append(options, opt.name+" = "+value)
	}
	return "OPTION " + strings.Join(options, ", ") + " ", nil
}

func compileOptionMap[V any](m map[string]V) string {
	keys := sortedKeys(m)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + cast.ToString(m[k])
	}
	return "(" + strings.Join(pairs, ", ") + ")"
}

// compileFacet compiles f, lending it the builder's connection when it has none.
func (q *SphinxQL) compileFacet(f *Facet) (string, error) {
	if f.Connection() == nil {
		f.SetConnection(q.conn)
		defer f.SetConnection(nil)
	}
	return f.GetFacet()
}

func (q *SphinxQL) compileInsert() (string, error) {
	var query strings.Builder

	if q.typ == typeInsert {
		query.WriteString("INSERT ")
	} else {
		query.WriteString("REPLACE ")
	}

	if q.into != "" {
		query.WriteString("INTO " + q.into + " ")
	}

	if len(q.columns) > 0 {
		query.WriteString("(" + strings.Join(q.escaper.QuoteIdentifierArr(q.columns), ", ") + ") ")
	}

	if len(q.values) > 0 {
		rows := make([]string, len(q.values))
		for i, row := range q.values {
			quoted, err := q.escaper.QuoteArr(row)
			if err != nil {
				return "", err
			}
			rows[i] = "(" + strings.Join(quoted, ", ") + ")"
		}
		query.WriteString("VALUES " + strings.Join(rows, ", "))
	}

	return strings.TrimSpace(query.String()), nil
}

func (q *SphinxQL) compileUpdate() (string, error) {
	var query strings.Builder

	query.WriteString("UPDATE ")
	if q.into != "" {
		query.WriteString(q.into + " ")
	}

	if len(q.set) > 0 {
		pairs := make([]string, len(q.set))
		for i, pair := range q.set {
			value, err := q.quoteSetValue(pair.value)
			if err != nil {
				return "", err
			}
			pairs[i] = q.escaper.QuoteIdentifier(pair.column) + " = " + value
		}
		query.WriteString("SET " + strings.Join(pairs, ", ") + " ")
	}

	match, err := q.compileMatch()
	if err != nil {
		return "", err
	}
	query.WriteString(match)

	where, err := q.compileWhere()
	if err != nil {
		return "", err
	}
	query.WriteString(where)

	return strings.TrimSpace(query.String()), nil
}

// quoteSetValue renders a SET value. Lists are multi-value attributes.
func (q *SphinxQL) quoteSetValue(value interface{}) (string, error) {
	list, ok := toList(value)
	if !ok {
		return q.escaper.Quote(value)
	}
	quoted, err := q.escaper.QuoteArr(list)
	if err != nil {
		return "", err
	}
	return "(" + strings.Join(quoted, ", ") + ")", nil
}

// compileDelete renders DELETE. Only the first FROM index is used.
func (q *SphinxQL) compileDelete() (string, error) {
	var query strings.Builder

	query.WriteString("DELETE ")
	if len(q.from) > 0 {
		query.WriteString("FROM " + cast.ToString(unwrapIdentifier(q.from[0])) + " ")
	}

	match, err := q.compileMatch()
	if err != nil {
		return "", err
	}
	query.WriteString(match)

	where, err := q.compileWhere()
	if err != nil {
		return "", err
	}
	query.WriteString(where)

	return strings.TrimSpace(query.String()), nil
}

// compileLimit renders LIMIT offset, limit when either part is set.
func compileLimit(offset, limit *int64) string {
	if offset == nil && limit == nil {
		return ""
	}
	off, lim := int64(0), MaxLimit
	if offset != nil {
		off = *offset
	}
	if limit != nil {
		lim = *limit
	}
	return "LIMIT " + strconv.FormatInt(off, 10) + ", " + strconv.FormatInt(lim, 10) + " "
}

func normalizeDirection(direction string) string {
	if strings.EqualFold(strings.TrimSpace(direction), Desc) {
		return Desc
	}
	return Asc
}

func unwrapIdentifier(value interface{}) interface{} {
	switch v := value.(type) {
	case Expression:
		return v.Value()
	case *Expression:
		return v.Value()
	}
	return value
}

// toList returns the elements of a slice or array value. Strings and byte
// slices are scalars.
func toList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case nil, string, []byte:
		return nil, false
	case []interface{}:
		return v, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	list := make([]interface{}, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}
