package commands

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/ui"
	"github.com/satishbabariya/sphinxql-go/pkg/client"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

type selectFlags struct {
	columns   []string
	from      []string
	match     string
	matchHalf bool
	fields    []string
	where     []string
	groupBy   []string
	groupN    int
	within    string
	orderBy   []string
	limit     int
	offset    int
	options   []string
	facets    []string
	meta      bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(app *App) *cobra.Command {
	var flags selectFlags
	var execute bool

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Build a SELECT statement from flags",
		Long: `Build a SELECT statement with the query builder and print it. Strings
are escaped locally, so no server is needed unless --execute is given.`,
		Example: `  sphinxql compile --from rt --match "hello world" --field title --where "gid IN 1,2" --limit 10
  sphinxql compile --from rt --match "foo - bar" --half --facet gid --facet tag --execute`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !execute {
				q, err := flags.build(offline{})
				if err != nil {
					return err
				}
				return printCompiled(q)
			}

			return app.WithClient(cmd.Context(), func(c *client.Client) error {
				q, err := flags.build(c)
				if err != nil {
					return err
				}
				if err := printCompiled(q); err != nil {
					return err
				}
				if len(flags.facets) > 0 || flags.meta {
					return runBatch(cmd, q.GetQueue(), q)
				}
				return runBuilder(cmd, q)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringSliceVarP(&flags.columns, "select", "s", nil, "columns to select (default *)")
	fs.StringSliceVar(&flags.from, "from", nil, "indexes to search")
	fs.StringVarP(&flags.match, "match", "m", "", "full-text query")
	fs.BoolVar(&flags.matchHalf, "half", false, "escape the full-text query leniently, keeping operators")
	fs.StringSliceVar(&flags.fields, "field", nil, "restrict the full-text query to these fields")
	fs.StringArrayVarP(&flags.where, "where", "w", nil, `attribute filter "column operator value" (repeatable)`)
	fs.StringSliceVar(&flags.groupBy, "group-by", nil, "group by columns")
	fs.IntVar(&flags.groupN, "group-n", 0, "keep this many rows per group")
	fs.StringVar(&flags.within, "within-group-order-by", "", `order inside groups "column [ASC|DESC]"`)
	fs.StringArrayVar(&flags.orderBy, "order-by", nil, `order "column [ASC|DESC]" (repeatable)`)
	fs.IntVarP(&flags.limit, "limit", "l", 0, "maximum rows")
	fs.IntVar(&flags.offset, "offset", 0, "rows to skip")
	fs.StringArrayVarP(&flags.options, "option", "o", nil, "OPTION name=value (repeatable)")
	fs.StringArrayVar(&flags.facets, "facet", nil, "FACET column (repeatable)")
	fs.BoolVar(&flags.meta, "meta", false, "queue SHOW META after the statement")
	fs.BoolVarP(&execute, "execute", "x", false, "run the statement")

	return cmd
}

func printCompiled(q *sphinxql.SphinxQL) error {
	for _, queued := range q.GetQueue() {
		compiled, err := queued.Compile()
		if err != nil {
			return err
		}
		ui.PrintSQL("compiled", compiled)
	}
	return nil
}

// build turns the flags into a builder bound to conn.
func (f *selectFlags) build(conn sphinxql.Connection) (*sphinxql.SphinxQL, error) {
	if len(f.from) == 0 {
		return nil, errors.New("--from is required")
	}

	q := sphinxql.New(conn).Select(toInterfaces(f.columns)...).From(toInterfaces(f.from)...)

	if f.match != "" {
		var column interface{}
		switch len(f.fields) {
		case 0:
		case 1:
			column = f.fields[0]
		default:
			column = f.fields
		}
		if f.matchHalf {
			q.MatchHalf(column, f.match)
		} else {
			q.Match(column, f.match)
		}
	}

	for _, expr := range f.where {
		column, op, value, err := parseFilter(expr)
		if err != nil {
			return nil, err
		}
		q.Where(column, op, value)
	}

	if len(f.groupBy) > 0 {
		q.GroupBy(toInterfaces(f.groupBy)...)
		if f.groupN > 0 {
			q.GroupNBy(f.groupN)
		}
	}
	if f.within != "" {
		column, direction := parseOrder(f.within)
		q.WithinGroupOrderBy(column, direction)
	}
	for _, expr := range f.orderBy {
		column, direction := parseOrder(expr)
		q.OrderBy(column, direction)
	}
	if f.offset > 0 {
		q.Offset(f.offset)
	}
	if f.limit > 0 {
		q.Limit(f.limit)
	}
	for _, expr := range f.options {
		name, value, err := parseOption(expr)
		if err != nil {
			return nil, err
		}
		q.Option(name, value)
	}
	for _, column := range f.facets {
		q.Facet(sphinxql.NewFacet(nil).Facet(column))
	}
	if f.meta {
		q.Enqueue(sphinxql.NewHelper(conn).ShowMeta())
	}

	return q, nil
}

func toInterfaces(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
