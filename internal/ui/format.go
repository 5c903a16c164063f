package ui

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cast"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// clauseKeywords start a new line in FormatSQL. Longer phrases come first so
// WITHIN GROUP ORDER BY is not split at ORDER BY.
var clauseKeywords = []string{
	"WITHIN GROUP ORDER BY",
	"GROUP BY",
	"ORDER BY",
	"FROM",
	"WHERE",
	"AND",
	"HAVING",
	"LIMIT",
	"OPTION",
	"FACET",
	"SET",
	"VALUES",
}

// FormatSQL puts every clause of query on its own line. Text inside quotes,
// backticks and parentheses is left alone, as is the AND of a BETWEEN.
func FormatSQL(query string) string {
	var out strings.Builder
	var quote byte
	depth := 0
	between := false

	for i := 0; i < len(query); i++ {
		c := query[i]

		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(query) {
				out.WriteByte(c)
				i++
				c = query[i]
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ' ' && depth == 0:
			rest := query[i+1:]
			if isWord(rest, "BETWEEN") {
				between = true
			}
			if between && isWord(rest, "AND") {
				between = false
				break
			}
			if kw := keywordAt(rest); kw != "" {
				out.WriteString("\n")
				out.WriteString(query[i+1 : i+1+len(kw)])
				i += len(kw)
				continue
			}
		}

		out.WriteByte(c)
	}

	return out.String()
}

func keywordAt(s string) string {
	for _, kw := range clauseKeywords {
		if isWord(s, kw) {
			return kw
		}
	}
	return ""
}

// isWord reports whether s starts with word, case-insensitively, followed by
// a space or the end of s.
func isWord(s, word string) bool {
	if len(s) < len(word) || !strings.EqualFold(s[:len(word)], word) {
		return false
	}
	return len(s) == len(word) || s[len(word)] == ' '
}

// TableData converts a result set into pterm rows, header first. NULL cells
// print as NULL.
func TableData(result *sphinxql.ResultSet) pterm.TableData {
	data := pterm.TableData{result.Columns()}
	for _, row := range result.Rows() {
		cells := make([]string, 0, len(row.Values()))
		for _, v := range row.Values() {
			if v == nil {
				cells = append(cells, "NULL")
				continue
			}
			cells = append(cells, cast.ToString(v))
		}
		data = append(data, cells)
	}
	return data
}

// PrintResultSet prints result as a table. Results without columns print
// nothing.
func PrintResultSet(result *sphinxql.ResultSet) error {
	if len(result.Columns()) == 0 {
		return nil
	}
	data := TableData(result)
	return PrintTable(data[0], data[1:])
}
