package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// NewMatchCommand creates the match command.
func NewMatchCommand(app *App) *cobra.Command {
	var mode string
	var fields []string
	var distance int
	var threshold float64
	var quoted bool

	cmd := &cobra.Command{
		Use:   "match <text>",
		Short: "Escape text or build a full-text expression",
		Long: `Print the full-text expression for text without contacting a server.

Modes:
  full       escape every operator (default)
  half       keep "-", "|" and quotes, escape the rest
  phrase     "text"
  proximity  "text"~distance
  quorum     "text"/threshold
  near       first NEAR/distance second ...`,
		Example: `  sphinxql match "C++ & Go"
  sphinxql match --mode half "go -java"
  sphinxql match --mode proximity --distance 3 --field title "hello world"
  sphinxql match --quoted "it's"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := buildMatch(strings.Join(args, " "), mode, fields, distance, threshold)
			if err != nil {
				return err
			}

			if quoted {
				expr, err = sphinxql.NewEscaper(offline{}).Quote(expr)
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), expr)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "full", "full, half, phrase, proximity, quorum or near")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "restrict to fields")
	cmd.Flags().IntVar(&distance, "distance", 2, "proximity or NEAR distance")
	cmd.Flags().Float64Var(&threshold, "threshold", 1, "quorum threshold, a count or a fraction")
	cmd.Flags().BoolVar(&quoted, "quoted", false, "print the expression as a quoted MATCH() argument")

	return cmd
}

func buildMatch(text, mode string, fields []string, distance int, threshold float64) (string, error) {
	q := sphinxql.New(offline{})
	m := sphinxql.NewMatch(q)
	if len(fields) > 0 {
		m.Field(fields...)
	}

	switch strings.ToLower(mode) {
	case "full", "":
		m.Match(sphinxql.Expr(q.EscapeMatch(text)))
	case "half":
		m.Match(sphinxql.Expr(q.HalfEscapeMatch(text)))
	case "phrase":
		m.Phrase(text)
	case "proximity":
		m.Proximity(text, distance)
	case "quorum":
		m.Quorum(text, threshold)
	case "near":
		words := strings.Fields(text)
		if len(words) < 2 {
			return "", fmt.Errorf("near needs at least two words")
		}
		m.Match(words[0])
		for _, word := range words[1:] {
			m.Near(word, distance)
		}
	default:
		return "", fmt.Errorf("unknown match mode: %s", mode)
	}

	return m.Compile(), nil
}
