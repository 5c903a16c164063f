// Package telemetry provides telemetry adapter interfaces.
package telemetry

import (
	"context"
	"time"
)

// Telemetry defines the telemetry adapter interface.
type Telemetry interface {
	// RecordQuery records a statement execution.
	RecordQuery(ctx context.Context, info QueryInfo)

	// RecordError records an error.
	RecordError(ctx context.Context, info ErrorInfo)

	// RecordConnection records a connection event.
	RecordConnection(ctx context.Context, info ConnectionInfo)

	// Flush flushes any buffered telemetry data.
	Flush(ctx context.Context) error

	// Close closes the telemetry adapter.
	Close(ctx context.Context) error
}

// QueryInfo contains information about a statement.
type QueryInfo struct {
	// Operation is the leading verb (SELECT, INSERT, SHOW, ...) or "BATCH".
	Operation string

	// Statements is the number of statements sent, more than one for batches.
	Statements int

	// Duration is how long the round trip took.
	Duration time.Duration

	// Success indicates if the statement succeeded.
	Success bool

	// Rows is the number of rows returned.
	Rows int

	// RowsAffected is the number of rows written.
	RowsAffected int64
}

// ErrorInfo contains information about an error.
type ErrorInfo struct {
	// Error is the error that occurred.
	Error error

	// Kind is the error kind: configuration, connection or database.
	Kind string

	// Operation is the operation that failed.
	Operation string

	// Query is the statement text (if applicable).
	Query string
}

// ConnectionInfo contains information about a connection event.
type ConnectionInfo struct {
	// Event is the event type (connect, disconnect, retry).
	Event string

	// Duration is how long the operation took.
	Duration time.Duration

	// Success indicates if the operation succeeded.
	Success bool

	// Attempt is the connect attempt number, starting at 1.
	Attempt int
}

// Config holds telemetry configuration.
type Config struct {
	// Type is the telemetry type (noop, prometheus).
	Type string

	// Namespace prefixes every metric name. Defaults to "sphinxql".
	Namespace string
}
