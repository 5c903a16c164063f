package sphinxql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBatchQueueOrder(t *testing.T) {
	conn := new(MockConnection)

	first := New(conn).Select().From("rt")
	second := first.Enqueue(nil).Select().From("rt2")
	third := second.Enqueue(New(conn).Query("SHOW META"))

	expected := []string{"SELECT * FROM `rt`", "SELECT * FROM `rt2`", "SHOW META"}

	for _, node := range []*SphinxQL{first, second, third} {
		queue := node.GetQueue()
		require.Len(t, queue, 3)

		compiled := make([]string, len(queue))
		for i, q := range queue {
			compiled[i] = compile(t, q)
		}
		assert.Equal(t, expected, compiled)
	}
}

func TestBatchSkipsUnconfiguredNodes(t *testing.T) {
	conn := new(MockConnection)

	first := New(conn).Select().From("rt")
	middle := first.Enqueue(nil)
	last := middle.Enqueue(nil).Query("SHOW META")

	queue := last.GetQueue()
	require.Len(t, queue, 2)
	assert.Same(t, first, queue[0])
	assert.Same(t, last, queue[1])
}

func TestGetQueueWithoutBatch(t *testing.T) {
	assert.Len(t, New(nil).Query("SHOW META").GetQueue(), 1)
	assert.Empty(t, New(nil).GetQueue())
}

func TestExecuteBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsEveryStatement", func(t *testing.T) {
		conn := new(MockConnection)
		results := NewMultiResultSet(NewResultSet(nil, nil, 0), NewResultSet(nil, nil, 0))
		conn.On("MultiQuery", ctx, []string{"SELECT * FROM `rt`", "SHOW META"}).Return(results, nil)

		q := New(conn).Select().From("rt")
		q.Enqueue(nil).Query("SHOW META")

		got, err := q.ExecuteBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Len())
		conn.AssertExpectations(t)
	})

	t.Run("EmptyQueueNeverReachesConnection", func(t *testing.T) {
		conn := new(MockConnection)

		q := New(conn)
		q.Enqueue(nil)

		_, err := q.ExecuteBatch(ctx)
		assert.ErrorIs(t, err, ErrEmptyQueue)
		assert.True(t, IsConfiguration(err))
		conn.AssertNotCalled(t, "MultiQuery", mock.Anything, mock.Anything)
	})

	t.Run("CompileError", func(t *testing.T) {
		conn := new(MockConnection)

		q := New(conn).Select().From("rt").Where("id", OpBetween, 1)
		q.Enqueue(nil).Query("SHOW META")

		_, err := q.ExecuteBatch(ctx)
		assert.ErrorIs(t, err, ErrInvalidFilter)
		conn.AssertNotCalled(t, "MultiQuery", mock.Anything, mock.Anything)
	})
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	conn := new(MockConnection)

	b := NewBatch(conn).Add(
		New(conn).Select().From("rt").Limit(1),
		nil,
		New(conn),
		NewHelper(conn).ShowMeta(),
	)

	require.Len(t, b.Queries(), 2)

	queue, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT * FROM `rt` LIMIT 0, 1", "SHOW META"}, queue)

	_, err = NewBatch(nil).Add(New(nil).Query("SHOW META")).Execute(ctx)
	assert.ErrorIs(t, err, ErrNoConnection)

	_, err = NewBatch(conn).Execute(ctx)
	assert.ErrorIs(t, err, ErrEmptyQueue)
}
