package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// splitStatements splits a script on semicolons outside quotes and drops
// empty statements and lines starting with "--" or "#".
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	var quote byte

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		if quote == 0 {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "#") {
				continue
			}
		}

		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case quote != 0:
				if c == '\\' && i+1 < len(line) {
					current.WriteByte(c)
					i++
					c = line[i]
				} else if c == quote {
					quote = 0
				}
			case c == '\'' || c == '"' || c == '`':
				quote = c
			case c == ';':
				flush()
				continue
			}
			current.WriteByte(c)
		}
		current.WriteByte('\n')
	}
	flush()

	return statements
}

// filterOperators are matched longest first.
var filterOperators = []string{
	"NOT IN", "BETWEEN", "IN",
	"!=", "<>", "<=", ">=", "=", "<", ">",
}

// parseFilter parses "column operator value", for example "gid = 3",
// "price BETWEEN 10,20" or "tag IN 1,2,3". The leftmost operator wins.
func parseFilter(expr string) (string, string, interface{}, error) {
	upper := asciiUpper(expr)

	at, op := -1, ""
	for _, candidate := range filterOperators {
		idx := indexOperator(upper, candidate)
		if idx >= 0 && (at < 0 || idx < at) {
			at, op = idx, candidate
		}
	}

	if at >= 0 {
		column := strings.TrimSpace(expr[:at])
		raw := strings.TrimSpace(expr[at+len(op):])
		if column != "" && raw != "" {
			if strings.HasSuffix(op, "IN") || strings.HasSuffix(op, "BETWEEN") {
				parts := strings.Split(strings.Trim(raw, "()"), ",")
				values := make([]interface{}, 0, len(parts))
				for _, p := range parts {
					values = append(values, parseValue(strings.TrimSpace(p)))
				}
				return column, op, values, nil
			}
			if op == "<>" {
				op = "!="
			}
			return column, op, parseValue(raw), nil
		}
	}

	return "", "", nil, fmt.Errorf("invalid filter %q: expected \"column operator value\"", expr)
}

// indexOperator finds op in expr. Word operators must stand alone.
func indexOperator(expr, op string) int {
	if op[0] < 'A' || op[0] > 'Z' {
		return strings.Index(expr, op)
	}
	idx := strings.Index(expr, " "+op+" ")
	if idx < 0 {
		return -1
	}
	return idx + 1
}

// asciiUpper upper-cases ASCII letters only, so byte offsets are kept.
func asciiUpper(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, s)
}

// parseValue turns numeric text into numbers and strips matching quotes.
func parseValue(raw string) interface{} {
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// parseOrder parses "column [ASC|DESC]".
func parseOrder(expr string) (string, string) {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.ToUpper(fields[1])
	}
}

// parseOption parses "name=value". Bare words such as rankers are passed
// through unquoted.
func parseOption(expr string) (string, interface{}, error) {
	name, raw, ok := strings.Cut(expr, "=")
	name = strings.TrimSpace(name)
	raw = strings.TrimSpace(raw)
	if !ok || name == "" || raw == "" {
		return "", nil, fmt.Errorf("invalid option %q: expected name=value", expr)
	}

	value := parseValue(raw)
	if s, isString := value.(string); isString && s == raw {
		return name, sphinxql.Expr(raw), nil
	}
	return name, value, nil
}
