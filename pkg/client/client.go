// Package client binds the sphinxql query builder to a searchd connection.
//
// A Client owns one pinned session, so session state such as SHOW META or an
// open transaction refers to the statement sent just before it.
//
//	c, err := client.New(client.WithAddress("127.0.0.1", 9306))
//	if err != nil {
//		return err
//	}
//	if err := c.Connect(ctx); err != nil {
//		return err
//	}
//	defer c.Disconnect(ctx)
//
//	result, err := c.Builder().Select().From("rt").Match("title", "hello").Execute(ctx)
package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/satishbabariya/sphinxql-go/internal/adapters/database"
	"github.com/satishbabariya/sphinxql-go/internal/adapters/database/mysql"
	"github.com/satishbabariya/sphinxql-go/internal/adapters/telemetry"
	"github.com/satishbabariya/sphinxql-go/internal/version"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// Logger is the interface for logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field.
type Field struct {
	Key   string
	Value interface{}
}

// Client is a sphinxql.Connection with logging, telemetry and a middleware
// chain around every round trip.
type Client struct {
	config    *Config
	adapter   database.Adapter
	telemetry telemetry.Telemetry

	mu         sync.RWMutex
	middleware []MiddlewareFunc
}

var _ sphinxql.Connection = (*Client)(nil)

// New creates a client. Connect must be called before sending statements.
func New(opts ...Option) (*Client, error) {
	config := DefaultConfig()
	ApplyOptions(config, opts...)

	adapter := config.Adapter
	if adapter == nil {
		a, err := mysql.NewMySQLAdapter(config.DatabaseConfig())
		if err != nil {
			return nil, err
		}
		adapter = a
	}

	t := config.Telemetry
	if t == nil {
		t = telemetry.NewNoopTelemetry()
	}

	c := &Client{
		config:    config,
		adapter:   adapter,
		telemetry: t,
	}

	if config.Logger != nil {
		c.middleware = append(c.middleware, LogMiddleware(config.Logger, config.LogQueries))
	}
	if config.QueryTimeout > 0 {
		c.middleware = append(c.middleware, TimeoutMiddleware(config.QueryTimeout))
	}

	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() *Config {
	return c.config
}

// Use appends mw to the middleware chain. Middleware registered first runs
// outermost.
func (c *Client) Use(mw MiddlewareFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, mw)
}

// Connect opens the session, retrying connection failures with exponential
// backoff.
func (c *Client) Connect(ctx context.Context) error {
	retryConfig := DefaultRetryConfig()
	retryConfig.MaxAttempts = c.config.ConnectRetries
	retryConfig.InitialDelay = c.config.ConnectRetryDelay

	err := retry(ctx, retryConfig, func(attempt int) error {
		start := time.Now()
		err := c.adapter.Connect(ctx)
		c.telemetry.RecordConnection(ctx, telemetry.ConnectionInfo{
			Event:    "connect",
			Duration: time.Since(start),
			Success:  err == nil,
			Attempt:  attempt,
		})
		if err != nil && c.config.Logger != nil {
			c.config.Logger.Warn("connect failed",
				Field{Key: "attempt", Value: attempt},
				Field{Key: "error", Value: err},
			)
		}
		return err
	})
	if err != nil {
		c.recordError(ctx, "connect", "", err)
		return err
	}

	if c.config.Logger != nil {
		c.config.Logger.Info("connected", Field{Key: "address", Value: c.address()})
	}
	return nil
}

// Disconnect closes the session.
func (c *Client) Disconnect(ctx context.Context) error {
	start := time.Now()
	err := c.adapter.Disconnect(ctx)
	c.telemetry.RecordConnection(ctx, telemetry.ConnectionInfo{
		Event:    "disconnect",
		Duration: time.Since(start),
		Success:  err == nil,
	})
	if err != nil {
		c.recordError(ctx, "disconnect", "", err)
	}
	return err
}

// Connected reports whether the session is open.
func (c *Client) Connected() bool {
	return c.adapter.Connected()
}

// Ping checks the session.
func (c *Client) Ping(ctx context.Context) error {
	return c.adapter.Ping(ctx)
}

// Escape quotes value as a string literal.
func (c *Client) Escape(value string) (string, error) {
	return c.adapter.Escape(value)
}

// Query sends one statement.
func (c *Client) Query(ctx context.Context, query string) (*sphinxql.ResultSet, error) {
	params := MiddlewareParams{
		Operation:  operationOf(query),
		Statements: []string{query},
		StartTime:  time.Now(),
	}

	result := c.run(ctx, params, func(ctx context.Context) (interface{}, error) {
		return c.adapter.Query(ctx, query)
	})

	set, _ := result.Data.(*sphinxql.ResultSet)
	info := telemetry.QueryInfo{
		Operation:  params.Operation,
		Statements: 1,
		Duration:   result.Duration,
		Success:    result.Error == nil,
	}
	if set != nil {
		info.Rows = set.Count()
		info.RowsAffected = set.AffectedRows()
	}
	c.telemetry.RecordQuery(ctx, info)

	if result.Error != nil {
		c.recordError(ctx, params.Operation, query, result.Error)
		return nil, result.Error
	}
	return set, nil
}

// MultiQuery sends every statement of queue in one round trip.
func (c *Client) MultiQuery(ctx context.Context, queue []string) (*sphinxql.MultiResultSet, error) {
	if len(queue) == 0 {
		return nil, sphinxql.ErrEmptyQueue
	}

	params := MiddlewareParams{
		Operation:  "BATCH",
		Statements: queue,
		StartTime:  time.Now(),
	}

	result := c.run(ctx, params, func(ctx context.Context) (interface{}, error) {
		return c.adapter.MultiQuery(ctx, queue)
	})

	sets, _ := result.Data.(*sphinxql.MultiResultSet)
	info := telemetry.QueryInfo{
		Operation:  params.Operation,
		Statements: len(queue),
		Duration:   result.Duration,
		Success:    result.Error == nil,
	}
	if sets != nil {
		for _, set := range sets.All() {
			info.Rows += set.Count()
			info.RowsAffected += set.AffectedRows()
		}
	}
	c.telemetry.RecordQuery(ctx, info)

	if result.Error != nil {
		c.recordError(ctx, params.Operation, joinStatements(queue), result.Error)
		return nil, result.Error
	}
	return sets, nil
}

// Builder returns a query builder bound to the client.
func (c *Client) Builder() *sphinxql.SphinxQL {
	return sphinxql.New(c)
}

// Helper returns the helper statements bound to the client.
func (c *Client) Helper() *sphinxql.Helper {
	return sphinxql.NewHelper(c)
}

// ServerVersion reads the "version" status counter.
func (c *Client) ServerVersion(ctx context.Context) (*version.Server, error) {
	result, err := c.Helper().ShowStatus().Execute(ctx)
	if err != nil {
		return nil, err
	}

	raw, ok := sphinxql.PairsToMap(result)["version"]
	if !ok {
		return nil, fmt.Errorf("%w: server did not report a version", sphinxql.ErrDatabase)
	}
	return version.ParseServerVersion(raw)
}

// Telemetry returns the telemetry adapter.
func (c *Client) Telemetry() telemetry.Telemetry {
	return c.telemetry
}

// Close disconnects and flushes telemetry.
func (c *Client) Close(ctx context.Context) error {
	var err error
	if c.adapter.Connected() {
		err = c.Disconnect(ctx)
	}
	if ferr := c.telemetry.Flush(ctx); err == nil {
		err = ferr
	}
	if cerr := c.telemetry.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

// run sends a round trip through the middleware chain.
func (c *Client) run(ctx context.Context, params MiddlewareParams, send func(ctx context.Context) (interface{}, error)) MiddlewareResult {
	c.mu.RLock()
	chain := make([]MiddlewareFunc, len(c.middleware))
	copy(chain, c.middleware)
	c.mu.RUnlock()

	next := func(ctx context.Context) MiddlewareResult {
		data, err := send(ctx)
		return MiddlewareResult{
			Data:     data,
			Error:    err,
			Duration: time.Since(params.StartTime),
		}
	}

	for i := len(chain) - 1; i >= 0; i-- {
		mw, inner := chain[i], next
		next = func(ctx context.Context) MiddlewareResult {
			return mw(ctx, params, inner)
		}
	}

	return next(ctx)
}

func (c *Client) recordError(ctx context.Context, operation, query string, err error) {
	c.telemetry.RecordError(ctx, telemetry.ErrorInfo{
		Error:     err,
		Kind:      errorKind(err),
		Operation: operation,
		Query:     query,
	})
}

func (c *Client) address() string {
	if c.config.DSN != "" {
		return "dsn"
	}
	return fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
}

// errorKind names the error kind for telemetry labels.
func errorKind(err error) string {
	switch {
	case sphinxql.IsConfiguration(err):
		return "configuration"
	case sphinxql.IsConnection(err):
		return "connection"
	case sphinxql.IsDatabase(err):
		return "database"
	default:
		return "unknown"
	}
}

// operationOf returns the upper-cased leading verb of query.
func operationOf(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}

func joinStatements(statements []string) string {
	return strings.Join(statements, ";\n")
}
