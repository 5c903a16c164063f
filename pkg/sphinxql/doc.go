/*
Package sphinxql builds SphinxQL statements for Sphinx and ManticoreSearch.

A SphinxQL value accumulates clause state for exactly one statement and renders
it to text with Compile. Statements are sent through a Connection, which is the
only collaborator the package needs: it escapes string literals on behalf of the
server and executes text statements.

	q := sphinxql.New(conn).
		Select("id", "gid").
		From("rt").
		Match("title", "quick brown").
		Where("gid", sphinxql.OpGreater, 300).
		OrderBy("id", "DESC").
		Limit(20)

	sql, err := q.Compile()

Full-text MATCH expressions can be written by hand or built with MatchBuilder:

	q.Match(func(m *sphinxql.MatchBuilder) {
		m.Field("title").Match("quick").Before("fox")
	}, nil)
*/
package sphinxql
