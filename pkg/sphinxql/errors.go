package sphinxql

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package or by a Connection
// implementation matches one of them with errors.Is.
var (
	// ErrConfiguration is returned when a statement is missing a required
	// part. It is always detected before any network call.
	ErrConfiguration = errors.New("sphinxql: configuration error")

	// ErrConnection is returned when the link to the server is absent or broken.
	ErrConnection = errors.New("sphinxql: connection error")

	// ErrDatabase is returned when the server rejects a statement.
	ErrDatabase = errors.New("sphinxql: database error")
)

var (
	// ErrEmptyQueue is returned when a batch holds no configured statement.
	ErrEmptyQueue = fmt.Errorf("%w: there is no queue present to execute", ErrConfiguration)

	// ErrEmptyFacet is returned when a facet is compiled without columns.
	ErrEmptyFacet = fmt.Errorf("%w: facet requires at least one column", ErrConfiguration)

	// ErrInvalidFilter is returned for malformed WHERE or HAVING conditions.
	ErrInvalidFilter = fmt.Errorf("%w: invalid filter", ErrConfiguration)

	// ErrNoConnection is returned when a string must be escaped but no
	// Connection is bound.
	ErrNoConnection = fmt.Errorf("%w: no connection bound", ErrConnection)
)

// DatabaseError carries the error reported by the server for a statement.
type DatabaseError struct {
	Code    int
	Message string
	Query   string
	Cause   error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("[%d] %s", e.Code, msg)
	}
	if e.Query != "" {
		return fmt.Sprintf("sphinxql: %s [%s]", msg, e.Query)
	}
	return "sphinxql: " + msg
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrDatabase.
func (e *DatabaseError) Is(target error) bool {
	return target == ErrDatabase
}

// ConnectionError wraps a failure of the underlying link.
type ConnectionError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("sphinxql: %s: connection error", e.Op)
	}
	return fmt.Sprintf("sphinxql: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrConnection.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsDatabase checks if an error was reported by the server.
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}
