package sphinxql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// floatPrecision is the number of decimals used for float literals.
const floatPrecision = 8

// Escaper turns Go values into SphinxQL literals and identifiers. Strings are
// escaped by the Connection; everything else is formatted locally.
type Escaper struct {
	conn Connection
}

// NewEscaper creates an Escaper backed by conn. conn may be nil as long as no
// string needs quoting.
func NewEscaper(conn Connection) *Escaper {
	return &Escaper{conn: conn}
}

// Quote renders value as a literal.
//
// nil is null, booleans are 1 and 0, integers and floats are written without
// quotes (floats always with a dot), slices become a parenthesised list, and
// Expressions are emitted verbatim. Anything else is escaped by the server.
func (e *Escaper) Quote(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case Expression:
		return v.Value(), nil
	case *Expression:
		return v.Value(), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToString(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', floatPrecision, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', floatPrecision, 64), nil
	case string:
		return e.escape(v)
	case []byte:
		return e.escape(string(v))
	case fmt.Stringer:
		return e.escape(v.String())
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			quoted, err := e.Quote(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = quoted
		}
		return "(" + strings.Join(parts, ",") + ")", nil
	case reflect.Ptr:
		if rv.IsNil() {
			return "null", nil
		}
		return e.Quote(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', floatPrecision, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', floatPrecision, 64), nil
	case reflect.Bool:
		if rv.Bool() {
			return "1", nil
		}
		return "0", nil
	case reflect.String:
		return e.escape(rv.String())
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return "", fmt.Errorf("%w: cannot quote %T", ErrConfiguration, value)
	}
	return e.escape(s)
}

// QuoteArr quotes every element of values, preserving order.
func (e *Escaper) QuoteArr(values []interface{}) ([]string, error) {
	result := make([]string, len(values))
	for i, value := range values {
		quoted, err := e.Quote(value)
		if err != nil {
			return nil, err
		}
		result[i] = quoted
	}
	return result, nil
}

// QuoteIdentifier wraps every dot-separated segment of value in backticks.
// Expressions and the bare star are returned unchanged.
func (e *Escaper) QuoteIdentifier(value interface{}) string {
	var name string
	switch v := value.(type) {
	case Expression:
		return v.Value()
	case *Expression:
		return v.Value()
	case string:
		name = v
	default:
		name = cast.ToString(v)
	}

	if name == "*" {
		return name
	}

	pieces := strings.Split(name, ".")
	for i, piece := range pieces {
		pieces[i] = "`" + strings.ReplaceAll(piece, "`", "``") + "`"
	}
	return strings.Join(pieces, ".")
}

// QuoteIdentifierArr quotes every element of values, preserving order.
func (e *Escaper) QuoteIdentifierArr(values []interface{}) []string {
	result := make([]string, len(values))
	for i, value := range values {
		result[i] = e.QuoteIdentifier(value)
	}
	return result
}

func (e *Escaper) escape(value string) (string, error) {
	if e.conn == nil {
		return "", ErrNoConnection
	}
	return e.conn.Escape(value)
}
