package sphinxql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBuilderCompile(t *testing.T) {
	q := New(nil)

	tests := []struct {
		name     string
		build    func(m *MatchBuilder)
		expected string
	}{
		{"single word", func(m *MatchBuilder) { m.Match("test") }, "test"},
		{"words are parenthesised", func(m *MatchBuilder) { m.Match("test case") }, "(test case)"},
		{"escaped and lower cased", func(m *MatchBuilder) { m.Match("A-B") }, `a\-b`},
		{"expression", func(m *MatchBuilder) { m.Match(Expr("@title Hello")) }, "@title Hello"},
		{"before", func(m *MatchBuilder) { m.Match("test").Before("case") }, "test << case"},
		{"or", func(m *MatchBuilder) { m.Match("a").OrMatch("b") }, "a | b"},
		{"maybe", func(m *MatchBuilder) { m.Match("a").Maybe("b") }, "a MAYBE b"},
		{"not", func(m *MatchBuilder) { m.Match("a").Not("b") }, "a -b"},
		{"exact", func(m *MatchBuilder) { m.Exact("cat") }, "=cat"},
		{"sentence", func(m *MatchBuilder) { m.Match("a").Sentence("b") }, "a SENTENCE b"},
		{"paragraph", func(m *MatchBuilder) { m.Match("a").Paragraph("b") }, "a PARAGRAPH b"},
		{"operator without keyword", func(m *MatchBuilder) { m.Match("a").OrMatch().Match("b") }, "a | b"},
		{
			"not with closure",
			func(m *MatchBuilder) {
				m.Not(func(m *MatchBuilder) { m.Match("a").OrMatch("b") })
			},
			"-(a | b)",
		},
		{
			"nested builder",
			func(m *MatchBuilder) {
				m.Match(NewMatch(q).Match("a").OrMatch("b")).Match("c")
			},
			"(a | b) c",
		},
		{"field", func(m *MatchBuilder) { m.Field("title").Match("hello") }, "@title hello"},
		{"fields", func(m *MatchBuilder) { m.Field("title", "body").Match("x") }, "@(title,body) x"},
		{"field limit", func(m *MatchBuilder) { m.FieldLimit(50, "title").Match("x") }, "@title[50] x"},
		{"ignore field", func(m *MatchBuilder) { m.IgnoreField("title").Match("x") }, "@!title x"},
		{"ignore fields limit", func(m *MatchBuilder) { m.IgnoreFieldLimit(5, "a", "b").Match("x") }, "@!(a,b)[5] x"},
		{"phrase", func(m *MatchBuilder) { m.Phrase("Hello World") }, `"hello world"`},
		{"or phrase", func(m *MatchBuilder) { m.Phrase("a b").OrPhrase("c d") }, `"a b" | "c d"`},
		{"proximity", func(m *MatchBuilder) { m.Proximity("hello world", 10) }, `"hello world"~10`},
		{"quorum count", func(m *MatchBuilder) { m.Quorum("the world is wonderful", 3) }, `"the world is wonderful"/3`},
		{"quorum fraction", func(m *MatchBuilder) { m.Quorum("the world is wonderful", 0.5) }, `"the world is wonderful"/0.5`},
		{"boost", func(m *MatchBuilder) { m.Match("boosted").Boost(1.2) }, "boosted^1.2"},
		{"boost then more", func(m *MatchBuilder) { m.Match("a").Boost(2).Match("b") }, "a^2 b"},
		{"near with distance", func(m *MatchBuilder) { m.Match("hello").Near("world", 3) }, "hello NEAR/3 world"},
		{"near distance only", func(m *MatchBuilder) { m.Match("hello").Near(3).Match("world") }, "hello NEAR/3 world"},
		{"zone", func(m *MatchBuilder) { m.Zone([]string{"h3", "h4"}, "hello") }, "ZONE:(h3,h4) hello"},
		{"zone without keywords", func(m *MatchBuilder) { m.Zone([]string{"h1"}) }, "ZONE:(h1)"},
		{"zonespan", func(m *MatchBuilder) { m.Zonespan("th", "hello") }, "ZONESPAN:(th) hello"},
		{"empty", func(m *MatchBuilder) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch(q)
			tt.build(m)
			assert.Equal(t, tt.expected, m.Compile())
			assert.Equal(t, tt.expected, m.GetCompiled())
		})
	}
}

func TestMatchBuilderCompileIsIdempotent(t *testing.T) {
	m := NewMatch(New(nil)).
		Field("title").
		Match("quick").
		Before(func(m *MatchBuilder) { m.Match("brown").OrMatch("red") }).
		Proximity("lazy dog", 2)

	first := m.Compile()
	assert.Equal(t, first, m.Compile())
	assert.Equal(t, `@title quick << (brown | red) "lazy dog"~2`, first)
}

func TestMatchBuilderUsesBuilderEscapeTables(t *testing.T) {
	q := New(nil).SetFullEscapeChars("%")

	assert.Equal(t, `"50\% a-b"`, NewMatch(q).Phrase("50% a-b").Compile())
}

func TestMatchBuilderWithoutBuilder(t *testing.T) {
	m := NewMatch(nil).Match("A-B").OrMatch("hello world").Phrase("x y")

	assert.Equal(t, `a\-b | (hello world) "x y"`, m.Compile())
}
