package sphinxql

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Characters escaped inside MATCH() by EscapeMatch and HalfEscapeMatch.
// The half set leaves - | and " alone so that users can still write exclusion,
// OR and phrase operators.
var (
	DefaultFullEscapeChars = []string{`\`, "(", ")", "|", "-", "!", "@", "~", `"`, "&", "/", "^", "$", "=", "<"}
	DefaultHalfEscapeChars = []string{`\`, "(", ")", "!", "@", "~", "&", "/", "^", "$", "=", "<"}
)

var (
	halfDashRun    = regexp.MustCompile(`-[\s-]*-`)
	halfTrailingOp = regexp.MustCompile(`([-|])\s*$`)
	halfPipeRun    = regexp.MustCompile(`\|[\s|]*\|`)
	halfWordDash   = regexp.MustCompile(`(\S+)-(\S+)`)
	halfSpacedDash = regexp.MustCompile(`([^\s"]+)\s+-\s+([^\s"]+)`)
)

// escapeTable is an immutable character substitution table.
type escapeTable struct {
	chars    map[string]string
	replacer *strings.Replacer
}

func newEscapeTable(chars []string) *escapeTable {
	pairs := make([]string, 0, len(chars)*2)
	for _, c := range chars {
		pairs = append(pairs, c, `\`+c)
	}
	return &escapeTable{
		chars:    CompileEscapeChars(chars),
		replacer: strings.NewReplacer(pairs...),
	}
}

func (t *escapeTable) replace(s string) string {
	return t.replacer.Replace(s)
}

// CompileEscapeChars maps every character to its backslash-prefixed form.
func CompileEscapeChars(chars []string) map[string]string {
	result := make(map[string]string, len(chars))
	for _, c := range chars {
		result[c] = `\` + c
	}
	return result
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func matchText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case Expression:
		return v.Value(), true
	case *Expression:
		return v.Value(), true
	case string:
		return v, false
	default:
		return cast.ToString(v), false
	}
}

// EscapeMatch escapes every MATCH operator character in value and lower-cases
// the result. Expressions are returned verbatim.
func (q *SphinxQL) EscapeMatch(value interface{}) string {
	s, raw := matchText(value)
	if raw {
		return s
	}
	return lower(q.fullEscape.replace(s))
}

// HalfEscapeMatch escapes value while keeping the exclusion, OR and phrase
// operators usable. It also repairs the most common user mistakes: an odd
// number of double quotes is closed, repeated operators are squeezed, a
// dangling trailing operator is escaped, a hyphenated word stays one token and
// a spaced hyphen becomes a literal phrase. Expressions are returned verbatim.
func (q *SphinxQL) HalfEscapeMatch(value interface{}) string {
	s, raw := matchText(value)
	if raw {
		return s
	}

	s = q.halfEscape.replace(s)

	if strings.Count(s, `"`)%2 != 0 {
		s += `"`
	}

	s = halfDashRun.ReplaceAllString(s, "-")
	s = halfTrailingOp.ReplaceAllString(s, `\${1}`)
	s = halfPipeRun.ReplaceAllString(s, "|")
	s = halfWordDash.ReplaceAllString(s, `${1}\-${2}`)
	s = outsidePhrases(s, func(part string) string {
		return halfSpacedDash.ReplaceAllString(part, `"${1} - ${2}"`)
	})

	return lower(s)
}

// outsidePhrases applies fn to the parts of s that are not inside a double
// quoted phrase. s must hold an even number of double quotes.
func outsidePhrases(s string, fn func(string) string) string {
	parts := strings.Split(s, `"`)
	for i := 0; i < len(parts); i += 2 {
		parts[i] = fn(parts[i])
	}
	return strings.Join(parts, `"`)
}

// SetFullEscapeChars replaces the characters escaped by EscapeMatch.
func (q *SphinxQL) SetFullEscapeChars(chars ...string) *SphinxQL {
	q.fullEscape = newEscapeTable(chars)
	return q
}

// SetHalfEscapeChars replaces the characters escaped by HalfEscapeMatch.
func (q *SphinxQL) SetHalfEscapeChars(chars ...string) *SphinxQL {
	q.halfEscape = newEscapeTable(chars)
	return q
}

// FullEscapeChars returns the active EscapeMatch substitution table.
func (q *SphinxQL) FullEscapeChars() map[string]string {
	return q.fullEscape.chars
}

// HalfEscapeChars returns the active HalfEscapeMatch substitution table.
func (q *SphinxQL) HalfEscapeChars() map[string]string {
	return q.halfEscape.chars
}
