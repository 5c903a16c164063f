package commands

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/ui"
	"github.com/satishbabariya/sphinxql-go/pkg/client"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(app *App) *cobra.Command {
	var file string
	var meta bool

	cmd := &cobra.Command{
		Use:   "query [statement]",
		Short: "Run a raw SphinxQL statement",
		Long: `Run one SphinxQL statement and print its result. The statement is read
from the arguments, from --file, or from stdin when neither is given.`,
		Example: `  sphinxql query "SELECT * FROM rt WHERE MATCH('hello') LIMIT 5"
  sphinxql query --meta "SELECT id FROM rt WHERE MATCH('@title hello')"
  echo "SHOW TABLES" | sphinxql query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			statement, err := readStatement(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}

			return app.WithClient(cmd.Context(), func(c *client.Client) error {
				q := c.Builder().Query(statement)
				if !meta {
					return runBuilder(cmd, q)
				}

				q.Enqueue(c.Helper().ShowMeta())
				return runBatch(cmd, q.GetQueue(), q)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the statement from a file")
	cmd.Flags().BoolVar(&meta, "meta", false, "send SHOW META in the same round trip")

	return cmd
}

func readStatement(stdin io.Reader, file string, args []string) (string, error) {
	var statement string
	switch {
	case len(args) > 0:
		statement = strings.Join(args, " ")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrap(err, "read statement")
		}
		statement = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		statement = string(data)
	}

	statement = strings.TrimSuffix(strings.TrimSpace(statement), ";")
	if statement == "" {
		return "", errors.New("no statement given")
	}
	return statement, nil
}

// runBuilder executes q and prints the result.
func runBuilder(cmd *cobra.Command, q *sphinxql.SphinxQL) error {
	start := time.Now()
	result, err := q.Execute(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(result, time.Since(start))
}

// runBatch executes queries in one round trip through the batch of head.
func runBatch(cmd *cobra.Command, queries []*sphinxql.SphinxQL, head *sphinxql.SphinxQL) error {
	start := time.Now()
	results, err := head.ExecuteBatch(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	sets := results.All()
	for i, result := range sets {
		if len(sets) == len(queries) {
			ui.PrintSection(queries[i].GetCompiled())
		}
		if err := printResult(result, elapsed); err != nil {
			return err
		}
	}
	return nil
}

func printResult(result *sphinxql.ResultSet, elapsed time.Duration) error {
	if len(result.Columns()) == 0 {
		ui.PrintCount("row", result.AffectedRows(), elapsed)
		return nil
	}
	if err := ui.PrintResultSet(result); err != nil {
		return err
	}
	ui.PrintCount("row", int64(result.Count()), elapsed)
	return nil
}
