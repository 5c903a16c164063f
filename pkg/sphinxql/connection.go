package sphinxql

import "context"

// Connection is the database link the builder compiles for and executes on.
//
// Escape returns value as a complete single-quoted string literal, escaped
// the way the server expects. Query executes one statement. MultiQuery executes
// the statements as one batch and returns one result set per statement, in
// order; it fails with ErrEmptyQueue when queue is empty.
type Connection interface {
	Escape(value string) (string, error)
	Query(ctx context.Context, query string) (*ResultSet, error)
	MultiQuery(ctx context.Context, queue []string) (*MultiResultSet, error)
}
