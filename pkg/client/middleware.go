package client

import (
	"context"
	"time"
)

// MiddlewareFunc is the middleware function signature.
type MiddlewareFunc func(ctx context.Context, params MiddlewareParams, next MiddlewareNext) MiddlewareResult

// MiddlewareNext is the function to call to continue the middleware chain.
type MiddlewareNext func(ctx context.Context) MiddlewareResult

// MiddlewareParams contains information about the current round trip.
type MiddlewareParams struct {
	// Operation is the leading verb of the statement, or BATCH.
	Operation string

	// Statements holds every statement sent in this round trip.
	Statements []string

	// StartTime is when the round trip started.
	StartTime time.Time
}

// MiddlewareResult contains the result of a round trip.
type MiddlewareResult struct {
	// Data is a *sphinxql.ResultSet or *sphinxql.MultiResultSet.
	Data interface{}

	// Error is any error that occurred.
	Error error

	// Duration is how long the round trip took.
	Duration time.Duration
}

// LogMiddleware logs failures at error level. With logQueries it also logs
// successful round trips at debug level and attaches the statement text.
func LogMiddleware(logger Logger, logQueries bool) MiddlewareFunc {
	return func(ctx context.Context, params MiddlewareParams, next MiddlewareNext) MiddlewareResult {
		fields := []Field{
			{Key: "operation", Value: params.Operation},
			{Key: "statements", Value: len(params.Statements)},
		}
		if logQueries {
			fields = append(fields, Field{Key: "query", Value: joinStatements(params.Statements)})
		}

		result := next(ctx)

		fields = append(fields, Field{Key: "duration", Value: result.Duration})
		if result.Error != nil {
			logger.Error("statement failed", append(fields, Field{Key: "error", Value: result.Error})...)
		} else if logQueries {
			logger.Debug("statement executed", fields...)
		}

		return result
	}
}

// TimeoutMiddleware bounds every round trip by timeout.
func TimeoutMiddleware(timeout time.Duration) MiddlewareFunc {
	return func(ctx context.Context, params MiddlewareParams, next MiddlewareNext) MiddlewareResult {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return next(ctx)
	}
}
