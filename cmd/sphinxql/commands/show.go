package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/ui"
	"github.com/satishbabariya/sphinxql-go/pkg/client"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// NewShowCommand creates the show command.
func NewShowCommand(app *App) *cobra.Command {
	var like string

	cmd := &cobra.Command{
		Use:   "show <meta|warnings|status|tables|variables|index-status> [index]",
		Short: "Run a SHOW statement",
		Example: `  sphinxql show tables --like "rt%"
  sphinxql show index-status rt
  sphinxql show status`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"meta", "warnings", "status", "tables", "variables", "index-status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.WithClient(cmd.Context(), func(c *client.Client) error {
				q, err := showStatement(c.Helper(), args, like)
				if err != nil {
					return err
				}
				return runBuilder(cmd, q)
			})
		},
	}

	cmd.Flags().StringVar(&like, "like", "", "LIKE pattern for show tables")

	return cmd
}

func showStatement(h *sphinxql.Helper, args []string, like string) (*sphinxql.SphinxQL, error) {
	switch strings.ToLower(args[0]) {
	case "meta":
		return h.ShowMeta(), nil
	case "warnings":
		return h.ShowWarnings(), nil
	case "status":
		return h.ShowStatus(), nil
	case "tables":
		return h.ShowTables(like), nil
	case "variables":
		return h.ShowVariables(), nil
	case "index-status":
		if len(args) < 2 {
			return nil, fmt.Errorf("show index-status needs an index name")
		}
		return h.ShowIndexStatus(args[1]), nil
	default:
		return nil, fmt.Errorf("unknown show target: %s", args[0])
	}
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "describe <index>",
		Aliases: []string{"desc"},
		Short:   "Show the fields and attributes of an index",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.WithClient(cmd.Context(), func(c *client.Client) error {
				return runBuilder(cmd, c.Helper().Describe(args[0]))
			})
		},
	}
}

// NewKeywordsCommand creates the keywords command.
func NewKeywordsCommand(app *App) *cobra.Command {
	var hits bool

	cmd := &cobra.Command{
		Use:     "keywords <index> <text>",
		Short:   "Show how an index tokenizes text",
		Example: `  sphinxql keywords rt "running quickly" --hits`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")

			var withHits *bool
			if cmd.Flags().Changed("hits") {
				withHits = &hits
			}

			return app.WithClient(cmd.Context(), func(c *client.Client) error {
				return runBuilder(cmd, c.Helper().CallKeywords(text, args[0], withHits))
			})
		},
	}

	cmd.Flags().BoolVar(&hits, "hits", false, "include document and hit counts")

	return cmd
}

// printPairs prints a name/value map sorted by name.
func printPairs(pairs map[string]string) error {
	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, pairs[name]})
	}
	return ui.PrintTable([]string{"Name", "Value"}, rows)
}

func offlineHelper() *sphinxql.Helper {
	return sphinxql.NewHelper(offline{})
}
