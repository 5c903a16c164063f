package sphinxql

import (
	"strings"

	"github.com/spf13/cast"
)

type facetColumn struct {
	column interface{}
	alias  string
}

// facetCall is a function column whose parameters are quoted at compile time.
type facetCall struct {
	name   string
	params []interface{}
}

// Facet builds a FACET clause that is appended to a SELECT.
type Facet struct {
	conn    Connection
	escaper *Escaper

	columns []facetColumn
	by      string
	orderBy []orderEntry
	offset  *int64
	limit   *int64
}

// NewFacet creates a facet. conn may be nil; a SELECT lends its own connection
// while compiling the facet.
func NewFacet(conn Connection) *Facet {
	return &Facet{conn: conn, escaper: NewEscaper(conn)}
}

// Connection returns the bound connection.
func (f *Facet) Connection() Connection {
	return f.conn
}

// SetConnection binds conn to the facet.
func (f *Facet) SetConnection(conn Connection) *Facet {
	f.conn = conn
	f.escaper = NewEscaper(conn)
	return f
}

// Facet adds columns. Strings and Expressions are emitted as is, slices are
// expanded and a map[string]string adds alias to column pairs.
func (f *Facet) Facet(columns ...interface{}) *Facet {
	for _, column := range columns {
		switch c := column.(type) {
		case map[string]string:
			for _, alias := range sortedKeys(c) {
				f.FacetAs(alias, c[alias])
			}
		case []string:
			for _, name := range c {
				f.columns = append(f.columns, facetColumn{column: name})
			}
		case []interface{}:
			f.Facet(c...)
		default:
			f.columns = append(f.columns, facetColumn{column: c})
		}
	}
	return f
}

// FacetAs adds column under alias.
func (f *Facet) FacetAs(alias, column string) *Facet {
	f.columns = append(f.columns, facetColumn{column: column, alias: alias})
	return f
}

// FacetFunction adds a function call column such as INTERVAL(price,200,400).
func (f *Facet) FacetFunction(name string, params ...interface{}) *Facet {
	f.columns = append(f.columns, facetColumn{column: facetCall{name: name, params: params}})
	return f
}

// By sets the grouping column.
func (f *Facet) By(column string) *Facet {
	f.by = column
	return f
}

// OrderBy adds a sort column. An empty direction means ASC.
func (f *Facet) OrderBy(column interface{}, direction string) *Facet {
	f.orderBy = append(f.orderBy, orderEntry{column: column, direction: direction})
	return f
}

// OrderByFunction sorts by a function call such as COUNT(*).
func (f *Facet) OrderByFunction(name string, params []interface{}, direction string) *Facet {
	return f.OrderBy(facetCall{name: name, params: params}, direction)
}

// Offset sets the number of groups to skip.
func (f *Facet) Offset(n int) *Facet {
	v := int64(n)
	f.offset = &v
	return f
}

// Limit sets the number of groups to return.
func (f *Facet) Limit(n int) *Facet {
	v := int64(n)
	f.limit = &v
	return f
}

// Compile renders the FACET clause.
func (f *Facet) Compile() (string, error) {
	if len(f.columns) == 0 {
		return "", ErrEmptyFacet
	}

	var query strings.Builder

	columns := make([]string, len(f.columns))
	for i, c := range f.columns {
		text, err := f.columnText(c.column)
		if err != nil {
			return "", err
		}
		columns[i] = text
		if c.alias != "" {
			columns[i] += " AS " + c.alias
		}
	}
	query.WriteString("FACET " + strings.Join(columns, ", ") + " ")

	if f.by != "" {
		query.WriteString("BY " + f.by + " ")
	}

	if len(f.orderBy) > 0 {
		orders := make([]string, len(f.orderBy))
		for i, entry := range f.orderBy {
			text, err := f.columnText(entry.column)
			if err != nil {
				return "", err
			}
			orders[i] = text + " " + normalizeDirection(entry.direction)
		}
		query.WriteString("ORDER BY " + strings.Join(orders, ", ") + " ")
	}

	query.WriteString(compileLimit(f.offset, f.limit))

	return strings.TrimSpace(query.String()), nil
}

// GetFacet is Compile.
func (f *Facet) GetFacet() (string, error) {
	return f.Compile()
}

func (f *Facet) columnText(column interface{}) (string, error) {
	if call, ok := column.(facetCall); ok {
		return f.function(call.name, call.params)
	}
	return identifierText(column), nil
}

func (f *Facet) function(name string, params []interface{}) (string, error) {
	args := make([]string, len(params))
	for i, p := range params {
		switch v := p.(type) {
		case string:
			args[i] = v
		case Expression:
			args[i] = v.Value()
		case *Expression:
			args[i] = v.Value()
		default:
			quoted, err := f.escaper.Quote(v)
			if err != nil {
				return "", err
			}
			args[i] = quoted
		}
	}
	return name + "(" + strings.Join(args, ",") + ")", nil
}

// identifierText renders a facet identifier. Facet identifiers are never quoted.
func identifierText(value interface{}) string {
	return cast.ToString(unwrapIdentifier(value))
}
