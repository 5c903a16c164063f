package mysql

import (
	"strings"
	"unicode/utf8"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

var escaper = strings.NewReplacer(
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x1a", `\Z`,
)

// Escape returns value as a single quoted literal with backslash escaping,
// as searchd expects. Invalid UTF-8 is rejected.
func Escape(value string) (string, error) {
	if !utf8.ValidString(value) {
		return "", &sphinxql.DatabaseError{Message: "invalid UTF-8 in string literal"}
	}
	return "'" + escaper.Replace(value) + "'", nil
}

// rowVerbs are the statements answered with a result set.
var rowVerbs = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"CALL":     true,
	"EXPLAIN":  true,
}

// ReturnsRows reports whether query is answered with rows rather than an OK
// packet, judging by its first word.
func ReturnsRows(query string) bool {
	fields := strings.Fields(strings.TrimLeft(query, " \t\r\n("))
	if len(fields) == 0 {
		return false
	}
	return rowVerbs[strings.ToUpper(fields[0])]
}

// ResultSets returns how many result sets searchd sends for query: none for
// statements answered with an OK packet, otherwise one plus one per FACET
// clause outside quotes and parentheses.
func ResultSets(query string) int {
	if !ReturnsRows(query) {
		return 0
	}

	sets := 1
	var quote byte
	depth := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
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
		case depth == 0 && isSpace(c) && hasKeyword(query[i+1:], "FACET"):
			sets++
		}
	}
	return sets
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func hasKeyword(s, keyword string) bool {
	if len(s) < len(keyword) || !strings.EqualFold(s[:len(keyword)], keyword) {
		return false
	}
	return len(s) == len(keyword) || isSpace(s[len(keyword)])
}
