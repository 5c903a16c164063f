package sphinxql

import (
	"context"
)

// Batch is an ordered queue of builders sent to the server in one round trip.
type Batch struct {
	conn    Connection
	queries []*SphinxQL
}

// NewBatch creates an empty batch executed on conn.
func NewBatch(conn Connection) *Batch {
	return &Batch{conn: conn}
}

// Add appends queries in order.
func (b *Batch) Add(queries ...*SphinxQL) *Batch {
	for _, q := range queries {
		if q != nil {
			b.queries = append(b.queries, q)
		}
	}
	return b
}

// Queries returns the queued builders that have a statement type, in the
// order they were added. Unconfigured builders are skipped.
func (b *Batch) Queries() []*SphinxQL {
	result := make([]*SphinxQL, 0, len(b.queries))
	for _, q := range b.queries {
		if q.typ != typeNone {
			result = append(result, q)
		}
	}
	return result
}

// Compile renders every configured query.
func (b *Batch) Compile() ([]string, error) {
	queries := b.Queries()
	if len(queries) == 0 {
		return nil, ErrEmptyQueue
	}

	result := make([]string, len(queries))
	for i, q := range queries {
		compiled, err := q.Compile()
		if err != nil {
			return nil, err
		}
		result[i] = compiled
	}
	return result, nil
}

// Execute sends the batch and returns one result set per query.
func (b *Batch) Execute(ctx context.Context) (*MultiResultSet, error) {
	queue, err := b.Compile()
	if err != nil {
		return nil, err
	}
	if b.conn == nil {
		return nil, ErrNoConnection
	}
	return b.conn.MultiQuery(ctx, queue)
}

// Enqueue adds next to the batch q belongs to and returns it. A nil next
// enqueues a fresh builder on the same connection. The batch is created on
// first use with q as its first member.
func (q *SphinxQL) Enqueue(next *SphinxQL) *SphinxQL {
	if q.batch == nil {
		q.batch = NewBatch(q.conn).Add(q)
	}
	if next == nil {
		next = q.derive()
	}
	next.batch = q.batch
	q.batch.Add(next)
	return next
}

// GetQueue returns the configured builders of q's batch in enqueue order.
func (q *SphinxQL) GetQueue() []*SphinxQL {
	if q.batch == nil {
		return NewBatch(q.conn).Add(q).Queries()
	}
	return q.batch.Queries()
}

// ExecuteBatch runs every configured builder of q's batch in one round trip.
func (q *SphinxQL) ExecuteBatch(ctx context.Context) (*MultiResultSet, error) {
	if q.batch == nil {
		return NewBatch(q.conn).Add(q).Execute(ctx)
	}
	return q.batch.Execute(ctx)
}
