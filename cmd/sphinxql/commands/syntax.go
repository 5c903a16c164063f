package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/ui"
)

const syntaxSheet = `# SphinxQL quick reference

## Clause order

` + "```sql" + `
SELECT cols FROM idx
WHERE MATCH('query') AND filters
GROUP [n] BY col
WITHIN GROUP ORDER BY col dir
HAVING condition
ORDER BY col dir
LIMIT offset, count
OPTION name = value
FACET col [BY col] [ORDER BY expr] [LIMIT n]
` + "```" + `

## Full-text operators

| Operator | Example | Meaning |
|---|---|---|
| OR | ` + "`a \\| b`" + ` | either word |
| NOT | ` + "`a -b`" + ` | exclude a word |
| MAYBE | ` + "`a MAYBE b`" + ` | b only ranks |
| field | ` + "`@title a`" + `, ` + "`@(title,body) a`" + ` | restrict to fields |
| field limit | ` + "`@title[50] a`" + ` | first 50 positions |
| phrase | ` + "`\"a b\"`" + ` | exact phrase |
| proximity | ` + "`\"a b\"~10`" + ` | within 10 words |
| quorum | ` + "`\"a b c\"/2`" + ` | at least 2 words |
| order | ` + "`a << b`" + ` | a before b |
| exact form | ` + "`=cats`" + ` | no stemming |
| boost | ` + "`a^1.5`" + ` | weight a word |
| NEAR | ` + "`a NEAR/3 b`" + ` | within 3 words, any order |
| SENTENCE | ` + "`a SENTENCE b`" + ` | same sentence |
| PARAGRAPH | ` + "`a PARAGRAPH b`" + ` | same paragraph |
| ZONE | ` + "`ZONE:(h1,h2) a`" + ` | inside zones |
| ZONESPAN | ` + "`ZONESPAN:(th) a`" + ` | inside one zone span |

## Escaping

` + "`sphinxql match`" + ` escapes ` + "`\\ ( ) | - ! @ ~ \" & / ^ $ = <`" + `
and lower-cases the text. ` + "`--mode half`" + ` keeps ` + "`-`" + `, ` + "`|`" + ` and
balanced quotes so users can type operators.
`

// NewSyntaxCommand creates the syntax command.
func NewSyntaxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "syntax",
		Short: "Print a SphinxQL and full-text operator reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.PrintMarkdown(syntaxSheet)
		},
	}
}
