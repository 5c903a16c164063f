package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sphinxql-go/internal/adapters/telemetry"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAdapter) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAdapter) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAdapter) Connected() bool {
	return m.Called().Bool(0)
}

func (m *MockAdapter) Escape(value string) (string, error) {
	return "'" + strings.ReplaceAll(value, "'", `\'`) + "'", nil
}

func (m *MockAdapter) Query(ctx context.Context, query string) (*sphinxql.ResultSet, error) {
	args := m.Called(ctx, query)
	set, _ := args.Get(0).(*sphinxql.ResultSet)
	return set, args.Error(1)
}

func (m *MockAdapter) MultiQuery(ctx context.Context, queue []string) (*sphinxql.MultiResultSet, error) {
	args := m.Called(ctx, queue)
	sets, _ := args.Get(0).(*sphinxql.MultiResultSet)
	return sets, args.Error(1)
}

type entry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (l *recordingLogger) log(level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	values := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		values[f.Key] = f.Value
	}
	l.entries = append(l.entries, entry{level: level, msg: msg, fields: values})
}

func (l *recordingLogger) Debug(msg string, fields ...Field) { l.log("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...Field)  { l.log("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...Field)  { l.log("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...Field) { l.log("error", msg, fields) }

func newTestClient(t *testing.T, adapter *MockAdapter, opts ...Option) *Client {
	t.Helper()
	c, err := New(append([]Option{WithAdapter(adapter)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "127.0.0.1", config.Host)
	assert.Equal(t, 9306, config.Port)
	assert.Equal(t, 30*time.Second, config.QueryTimeout)
	assert.Equal(t, 3, config.ConnectRetries)
	assert.False(t, config.LogQueries)
}

func TestConfigOptions(t *testing.T) {
	config := DefaultConfig()
	logger := &recordingLogger{}

	ApplyOptions(config,
		WithDSN("root@tcp(search:9306)/"),
		WithAddress("search", 9307),
		WithCredentials("root", "secret"),
		WithConnectTimeout(time.Second),
		WithQueryTimeout(time.Minute),
		WithMaxIdleTime(time.Hour),
		WithConnectRetries(5, time.Millisecond),
		WithLogger(logger),
		WithLogQueries(true),
	)

	assert.Equal(t, "root@tcp(search:9306)/", config.DSN)
	assert.Equal(t, "search", config.Host)
	assert.Equal(t, 9307, config.Port)
	assert.Equal(t, "root", config.User)
	assert.Equal(t, "secret", config.Password)
	assert.Equal(t, time.Minute, config.QueryTimeout)
	assert.Equal(t, 5, config.ConnectRetries)
	assert.Equal(t, time.Millisecond, config.ConnectRetryDelay)
	assert.Same(t, logger, config.Logger)
	assert.True(t, config.LogQueries)

	db := config.DatabaseConfig()
	assert.Equal(t, "search", db.Host)
	assert.Equal(t, time.Second, db.ConnectTimeout)
	assert.Equal(t, time.Hour, db.MaxIdleTime)
}

func TestNewWithDefaultAdapter(t *testing.T) {
	c, err := New(WithAddress("127.0.0.1", 9306))
	require.NoError(t, err)

	assert.False(t, c.Connected())
	assert.NotNil(t, c.Telemetry())
}

func TestClientQuery(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	expected := sphinxql.NewResultSet([]string{"id"}, [][]interface{}{{"1"}}, 0)
	adapter.On("Query", mock.Anything, "SELECT * FROM `rt`").Return(expected, nil).Once()

	result, err := c.Builder().Select().From("rt").Execute(context.Background())
	require.NoError(t, err)
	assert.Same(t, expected, result)
	adapter.AssertExpectations(t)
}

func TestClientQueryError(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	failure := &sphinxql.DatabaseError{Code: 1064, Message: "syntax error"}
	adapter.On("Query", mock.Anything, "SELEC").Return(nil, failure).Once()

	result, err := c.Query(context.Background(), "SELEC")
	assert.Nil(t, result)
	assert.True(t, sphinxql.IsDatabase(err))
}

func TestClientMultiQuery(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	queue := []string{"SELECT 1", "SHOW META"}
	expected := sphinxql.NewMultiResultSet(
		sphinxql.NewResultSet([]string{"1"}, [][]interface{}{{"1"}}, 0),
		sphinxql.NewResultSet([]string{"Variable_name", "Value"}, nil, 0),
	)
	adapter.On("MultiQuery", mock.Anything, queue).Return(expected, nil).Once()

	result, err := c.MultiQuery(context.Background(), queue)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Len())
}

func TestClientMultiQueryEmpty(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	_, err := c.MultiQuery(context.Background(), nil)
	assert.ErrorIs(t, err, sphinxql.ErrEmptyQueue)
	adapter.AssertNotCalled(t, "MultiQuery", mock.Anything, mock.Anything)
}

func TestClientMiddlewareOrder(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter, WithQueryTimeout(0))
	adapter.On("Query", mock.Anything, "SHOW META").Return(sphinxql.NewResultSet(nil, nil, 0), nil)

	var calls []string
	trace := func(name string) MiddlewareFunc {
		return func(ctx context.Context, params MiddlewareParams, next MiddlewareNext) MiddlewareResult {
			calls = append(calls, name+":before:"+params.Operation)
			result := next(ctx)
			calls = append(calls, name+":after")
			return result
		}
	}
	c.Use(trace("outer"))
	c.Use(trace("inner"))

	_, err := c.Query(context.Background(), "SHOW META")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"outer:before:SHOW", "inner:before:SHOW", "inner:after", "outer:after",
	}, calls)
}

func TestClientMiddlewareShortCircuit(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	blocked := errors.New("blocked")
	c.Use(func(ctx context.Context, params MiddlewareParams, next MiddlewareNext) MiddlewareResult {
		return MiddlewareResult{Error: blocked}
	})

	_, err := c.Query(context.Background(), "DELETE FROM rt WHERE id = 1")
	assert.ErrorIs(t, err, blocked)
	adapter.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestTimeoutMiddleware(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter, WithQueryTimeout(time.Minute))

	adapter.On("Query", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Minute
	}), "SELECT 1").Return(sphinxql.NewResultSet(nil, nil, 0), nil).Once()

	_, err := c.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	adapter.AssertExpectations(t)
}

func TestLogMiddleware(t *testing.T) {
	adapter := new(MockAdapter)
	logger := &recordingLogger{}
	c := newTestClient(t, adapter, WithLogger(logger), WithLogQueries(true))

	adapter.On("Query", mock.Anything, "SELECT 1").Return(sphinxql.NewResultSet(nil, nil, 0), nil).Once()
	adapter.On("Query", mock.Anything, "SELEC").Return(nil, &sphinxql.DatabaseError{Message: "syntax"}).Once()

	_, err := c.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	_, err = c.Query(context.Background(), "SELEC")
	require.Error(t, err)

	require.Len(t, logger.entries, 2)
	assert.Equal(t, "debug", logger.entries[0].level)
	assert.Equal(t, "SELECT 1", logger.entries[0].fields["query"])
	assert.Equal(t, "error", logger.entries[1].level)
	assert.Equal(t, "SELEC", logger.entries[1].fields["query"])
	assert.NotNil(t, logger.entries[1].fields["error"])
}

func TestLogMiddlewareWithoutQueries(t *testing.T) {
	logger := &recordingLogger{}
	mw := LogMiddleware(logger, false)

	params := MiddlewareParams{Operation: "SELECT", Statements: []string{"SELECT 1"}}
	mw(context.Background(), params, func(ctx context.Context) MiddlewareResult {
		return MiddlewareResult{}
	})
	assert.Empty(t, logger.entries)

	mw(context.Background(), params, func(ctx context.Context) MiddlewareResult {
		return MiddlewareResult{Error: errors.New("boom")}
	})
	require.Len(t, logger.entries, 1)
	assert.NotContains(t, logger.entries[0].fields, "query")
}

func TestClientConnectRetries(t *testing.T) {
	adapter := new(MockAdapter)
	metrics := telemetry.NewPrometheusTelemetry(nil)
	c := newTestClient(t, adapter, WithConnectRetries(3, time.Millisecond), WithTelemetry(metrics))

	refused := &sphinxql.ConnectionError{Op: "connect", Cause: errors.New("connection refused")}
	adapter.On("Connect", mock.Anything).Return(refused).Twice()
	adapter.On("Connect", mock.Anything).Return(nil).Once()

	require.NoError(t, c.Connect(context.Background()))
	adapter.AssertNumberOfCalls(t, "Connect", 3)

	expected := `
# HELP sphinxql_connection_events_total Total number of connection events
# TYPE sphinxql_connection_events_total counter
sphinxql_connection_events_total{event="connect",status="error"} 2
sphinxql_connection_events_total{event="connect",status="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "sphinxql_connection_events_total"))
}

func TestClientConnectRetriesAttemptTimeout(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter, WithConnectRetries(3, time.Millisecond))

	timedOut := &sphinxql.ConnectionError{Op: "connect", Cause: context.DeadlineExceeded}
	adapter.On("Connect", mock.Anything).Return(timedOut).Once()
	adapter.On("Connect", mock.Anything).Return(nil).Once()

	require.NoError(t, c.Connect(context.Background()))
	adapter.AssertNumberOfCalls(t, "Connect", 2)
}

func TestRetryStopsWhenContextExpired(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	attempts := 0

	err := retry(ctx, RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, BackoffFactor: 2}, func(int) error {
		attempts++
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
}

func TestClientConnectGivesUp(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter, WithConnectRetries(2, time.Millisecond))

	refused := &sphinxql.ConnectionError{Op: "connect", Cause: errors.New("connection refused")}
	adapter.On("Connect", mock.Anything).Return(refused)

	err := c.Connect(context.Background())
	assert.True(t, sphinxql.IsConnection(err))
	adapter.AssertNumberOfCalls(t, "Connect", 2)
}

func TestClientConnectDoesNotRetryConfiguration(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter, WithConnectRetries(5, time.Millisecond))

	adapter.On("Connect", mock.Anything).Return(sphinxql.ErrConfiguration)

	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, sphinxql.ErrConfiguration)
	adapter.AssertNumberOfCalls(t, "Connect", 1)
}

func TestRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := retry(ctx, RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour, BackoffFactor: 2}, func(int) error {
		attempts++
		cancel()
		return errors.New("refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestClientServerVersion(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	status := sphinxql.NewResultSet([]string{"Counter", "Value"}, [][]interface{}{
		{"uptime", "10"},
		{"version", "6.2.12 dc5144d35@230822"},
	}, 0)
	adapter.On("Query", mock.Anything, "SHOW STATUS").Return(status, nil).Once()

	server, err := c.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6.2.12", server.String())
	assert.True(t, server.SupportsFacets())
}

func TestClientServerVersionMissing(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	adapter.On("Query", mock.Anything, "SHOW STATUS").Return(sphinxql.NewResultSet([]string{"Counter", "Value"}, nil, 0), nil).Once()

	_, err := c.ServerVersion(context.Background())
	assert.True(t, sphinxql.IsDatabase(err))
}

func TestClientClose(t *testing.T) {
	adapter := new(MockAdapter)
	c := newTestClient(t, adapter)

	adapter.On("Connected").Return(true).Once()
	adapter.On("Disconnect", mock.Anything).Return(nil).Once()

	require.NoError(t, c.Close(context.Background()))
	adapter.AssertExpectations(t)
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "SELECT", operationOf("  select * from rt"))
	assert.Equal(t, "UNKNOWN", operationOf(""))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "configuration", errorKind(sphinxql.ErrEmptyQueue))
	assert.Equal(t, "connection", errorKind(sphinxql.ErrNoConnection))
	assert.Equal(t, "database", errorKind(&sphinxql.DatabaseError{}))
	assert.Equal(t, "unknown", errorKind(errors.New("x")))
}
