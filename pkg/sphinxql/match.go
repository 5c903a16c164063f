package sphinxql

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// MatchArg is the argument of a MATCH keyword position. It is one of Literal,
// Expression, *MatchBuilder or MatchFunc.
type MatchArg interface {
	isMatchArg()
}

// Literal is plain keyword text. It is escaped before rendering.
type Literal string

// MatchFunc builds a sub-expression on a fresh MatchBuilder.
type MatchFunc func(m *MatchBuilder)

func (Literal) isMatchArg()       {}
func (Expression) isMatchArg()    {}
func (*MatchBuilder) isMatchArg() {}
func (MatchFunc) isMatchArg()     {}

// toMatchArg normalises a user supplied keyword argument.
func toMatchArg(value interface{}) MatchArg {
	switch v := value.(type) {
	case *Expression:
		return *v
	case MatchArg:
		return v
	case func(m *MatchBuilder):
		return MatchFunc(v)
	case string:
		return Literal(v)
	default:
		return Literal(cast.ToString(v))
	}
}

// matchToken is one element of a MATCH expression.
type matchToken interface {
	isMatchToken()
}

type (
	matchKeywords  struct{ arg MatchArg }
	matchOperator  struct{ op string }
	matchField     struct {
		prefix string
		fields []string
		limit  int
	}
	matchPhrase    struct{ keywords interface{} }
	matchProximity struct {
		keywords interface{}
		distance int
	}
	matchQuorum struct {
		keywords  interface{}
		threshold float64
	}
	matchBoost    struct{ amount float64 }
	matchNear     struct{ distance string }
	matchZone     struct{ zones []string }
	matchZonespan struct{ zone string }
)

func (matchKeywords) isMatchToken()  {}
func (matchOperator) isMatchToken()  {}
func (matchField) isMatchToken()     {}
func (matchPhrase) isMatchToken()    {}
func (matchProximity) isMatchToken() {}
func (matchQuorum) isMatchToken()    {}
func (matchBoost) isMatchToken()     {}
func (matchNear) isMatchToken()      {}
func (matchZone) isMatchToken()      {}
func (matchZonespan) isMatchToken()  {}

// MatchBuilder builds the full-text query passed to MATCH().
type MatchBuilder struct {
	sphinxql     *SphinxQL
	tokens       []matchToken
	lastCompiled string
}

// NewMatch creates a MatchBuilder that escapes with q's escape tables. A nil q
// uses the default tables.
func NewMatch(q *SphinxQL) *MatchBuilder {
	if q == nil {
		q = New(nil)
	}
	return &MatchBuilder{sphinxql: q}
}

func (m *MatchBuilder) add(token matchToken) *MatchBuilder {
	m.tokens = append(m.tokens, token)
	return m
}

// Match adds keywords. A string without whitespace is emitted as one escaped
// word, a string with whitespace is parenthesised, an Expression is emitted
// verbatim, and a *MatchBuilder or func(*MatchBuilder) becomes a parenthesised
// sub-expression.
func (m *MatchBuilder) Match(keywords ...interface{}) *MatchBuilder {
	for _, k := range keywords {
		if k == nil {
			continue
		}
		m.add(matchKeywords{arg: toMatchArg(k)})
	}
	return m
}

func (m *MatchBuilder) operator(op string, keywords []interface{}) *MatchBuilder {
	m.add(matchOperator{op: op})
	return m.Match(keywords...)
}

// OrMatch adds the OR operator, followed by keywords if given.
func (m *MatchBuilder) OrMatch(keywords ...interface{}) *MatchBuilder {
	return m.operator("| ", keywords)
}

// Maybe adds the MAYBE operator, followed by keywords if given.
func (m *MatchBuilder) Maybe(keywords ...interface{}) *MatchBuilder {
	return m.operator("MAYBE ", keywords)
}

// Not adds the exclusion operator, followed by keywords if given.
func (m *MatchBuilder) Not(keywords ...interface{}) *MatchBuilder {
	return m.operator("-", keywords)
}

// Before adds the strict order operator, followed by keywords if given.
func (m *MatchBuilder) Before(keywords ...interface{}) *MatchBuilder {
	return m.operator("<< ", keywords)
}

// Exact adds the exact form modifier, followed by keywords if given.
func (m *MatchBuilder) Exact(keywords ...interface{}) *MatchBuilder {
	return m.operator("=", keywords)
}

// Sentence adds the SENTENCE operator, followed by keywords if given.
func (m *MatchBuilder) Sentence(keywords ...interface{}) *MatchBuilder {
	return m.operator("SENTENCE ", keywords)
}

// Paragraph adds the PARAGRAPH operator, followed by keywords if given.
func (m *MatchBuilder) Paragraph(keywords ...interface{}) *MatchBuilder {
	return m.operator("PARAGRAPH ", keywords)
}

// Field limits the following keywords to fields.
func (m *MatchBuilder) Field(fields ...string) *MatchBuilder {
	return m.add(matchField{prefix: "@", fields: fields})
}

// FieldLimit limits the following keywords to the first limit positions of fields.
func (m *MatchBuilder) FieldLimit(limit int, fields ...string) *MatchBuilder {
	return m.add(matchField{prefix: "@", fields: fields, limit: limit})
}

// IgnoreField excludes fields from the following keywords.
func (m *MatchBuilder) IgnoreField(fields ...string) *MatchBuilder {
	return m.add(matchField{prefix: "@!", fields: fields})
}

// IgnoreFieldLimit is IgnoreField with a position limit.
func (m *MatchBuilder) IgnoreFieldLimit(limit int, fields ...string) *MatchBuilder {
	return m.add(matchField{prefix: "@!", fields: fields, limit: limit})
}

// Phrase adds a quoted phrase.
func (m *MatchBuilder) Phrase(keywords interface{}) *MatchBuilder {
	return m.add(matchPhrase{keywords: keywords})
}

// OrPhrase adds the OR operator followed by a quoted phrase.
func (m *MatchBuilder) OrPhrase(keywords interface{}) *MatchBuilder {
	m.add(matchOperator{op: "| "})
	return m.Phrase(keywords)
}

// Proximity adds a phrase whose words may be at most distance words apart.
func (m *MatchBuilder) Proximity(keywords interface{}, distance int) *MatchBuilder {
	return m.add(matchProximity{keywords: keywords, distance: distance})
}

// Quorum adds a phrase of which at least threshold words must match. A
// threshold below one is a fraction of the words.
func (m *MatchBuilder) Quorum(keywords interface{}, threshold float64) *MatchBuilder {
	return m.add(matchQuorum{keywords: keywords, threshold: threshold})
}

// Boost multiplies the weight of the preceding keyword.
func (m *MatchBuilder) Boost(amount float64) *MatchBuilder {
	return m.add(matchBoost{amount: amount})
}

// Near adds the NEAR operator followed by keywords. Called with a single
// argument, that argument is the distance and no keywords are added.
func (m *MatchBuilder) Near(keywords interface{}, distance ...int) *MatchBuilder {
	if len(distance) == 0 {
		return m.add(matchNear{distance: cast.ToString(keywords)})
	}
	m.add(matchNear{distance: strconv.Itoa(distance[0])})
	return m.Match(keywords)
}

// Zone limits the following keywords to zones.
func (m *MatchBuilder) Zone(zones []string, keywords ...interface{}) *MatchBuilder {
	m.add(matchZone{zones: zones})
	return m.Match(keywords...)
}

// Zonespan limits the following keywords to a single span of zone.
func (m *MatchBuilder) Zonespan(zone string, keywords ...interface{}) *MatchBuilder {
	m.add(matchZonespan{zone: zone})
	return m.Match(keywords...)
}

// Compile renders the tokens and stores the result.
func (m *MatchBuilder) Compile() string {
	var query strings.Builder

	for _, token := range m.tokens {
		switch t := token.(type) {
		case matchKeywords:
			query.WriteString(m.compileMatchArg(t.arg))
			query.WriteString(" ")
		case matchOperator:
			query.WriteString(t.op)
		case matchField:
			query.WriteString(t.prefix)
			if len(t.fields) == 1 {
				query.WriteString(t.fields[0])
			} else {
				query.WriteString("(" + strings.Join(t.fields, ",") + ")")
			}
			if t.limit != 0 {
				query.WriteString("[" + strconv.Itoa(t.limit) + "]")
			}
			query.WriteString(" ")
		case matchPhrase:
			query.WriteString(`"` + m.sphinxql.EscapeMatch(t.keywords) + `" `)
		case matchProximity:
			query.WriteString(`"` + m.sphinxql.EscapeMatch(t.keywords) + `"~`)
			query.WriteString(strconv.Itoa(t.distance) + " ")
		case matchQuorum:
			query.WriteString(`"` + m.sphinxql.EscapeMatch(t.keywords) + `"/`)
			query.WriteString(formatNumber(t.threshold) + " ")
		case matchBoost:
			trimmed := strings.TrimRight(query.String(), " \t\n\r")
			query.Reset()
			query.WriteString(trimmed + "^" + formatNumber(t.amount) + " ")
		case matchNear:
			query.WriteString("NEAR/" + t.distance + " ")
		case matchZone:
			query.WriteString("ZONE:(" + strings.Join(t.zones, ",") + ") ")
		case matchZonespan:
			query.WriteString("ZONESPAN:(" + t.zone + ") ")
		}
	}

	m.lastCompiled = strings.TrimSpace(query.String())
	return m.lastCompiled
}

// GetCompiled returns the result of the last Compile.
func (m *MatchBuilder) GetCompiled() string {
	return m.lastCompiled
}

func (m *MatchBuilder) compileMatchArg(arg MatchArg) string {
	switch a := arg.(type) {
	case Expression:
		return a.Value()
	case *MatchBuilder:
		return "(" + a.Compile() + ")"
	case MatchFunc:
		sub := NewMatch(m.sphinxql)
		a(sub)
		return "(" + sub.Compile() + ")"
	case Literal:
		escaped := m.sphinxql.EscapeMatch(string(a))
		if strings.ContainsAny(string(a), " \t\n\r") {
			return "(" + escaped + ")"
		}
		return escaped
	}
	return ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
