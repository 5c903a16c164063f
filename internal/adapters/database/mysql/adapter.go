// Package mysql implements the searchd adapter over the MySQL wire protocol.
package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/satishbabariya/sphinxql-go/internal/adapters/database"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

var errNotConnected = errors.New("not connected")

// MySQLAdapter implements the database.Adapter interface with
// go-sql-driver/mysql. Statements run on a single pinned session so that
// SHOW META, SHOW WARNINGS and transactions see the statements before them.
type MySQLAdapter struct {
	config database.Config
	driver *mysql.Config

	mu   sync.Mutex
	db   *sql.DB
	conn *sql.Conn
}

// NewMySQLAdapter creates a new adapter. It does not connect.
func NewMySQLAdapter(config database.Config) (*MySQLAdapter, error) {
	config = config.WithDefaults()

	driverConfig, err := DriverConfig(config)
	if err != nil {
		return nil, err
	}

	return &MySQLAdapter{
		config: config,
		driver: driverConfig,
	}, nil
}

// DriverConfig builds the go-sql-driver/mysql configuration for config.
// Multi statements are always enabled because batches are sent as one
// semicolon separated string.
func DriverConfig(config database.Config) (*mysql.Config, error) {
	var cfg *mysql.Config
	if config.DSN != "" {
		parsed, err := mysql.ParseDSN(config.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "invalid dsn")
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
		cfg.User = config.User
		cfg.Passwd = config.Password
	}

	cfg.MultiStatements = true
	cfg.InterpolateParams = false
	cfg.AllowNativePasswords = true
	if config.ConnectTimeout > 0 {
		cfg.Timeout = config.ConnectTimeout
	}
	if config.ReadTimeout > 0 {
		cfg.ReadTimeout = config.ReadTimeout
	}
	if config.WriteTimeout > 0 {
		cfg.WriteTimeout = config.WriteTimeout
	}
	return cfg, nil
}

// Connect opens the pinned session.
func (a *MySQLAdapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return nil
	}

	connector, err := mysql.NewConnector(a.driver)
	if err != nil {
		return &sphinxql.ConnectionError{Op: "connect", Cause: errors.Wrap(err, "failed to create connector")}
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(a.config.MaxIdleTime)

	ctx, cancel := context.WithTimeout(ctx, a.config.ConnectTimeout)
	defer cancel()

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return &sphinxql.ConnectionError{Op: "connect", Cause: errors.Wrap(err, "failed to open session")}
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return &sphinxql.ConnectionError{Op: "connect", Cause: errors.Wrap(err, "failed to ping searchd")}
	}

	a.db = db
	a.conn = conn
	return nil
}

// Disconnect closes the session.
func (a *MySQLAdapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return nil
	}

	connErr := a.conn.Close()
	dbErr := a.db.Close()
	a.conn, a.db = nil, nil

	if connErr != nil {
		return errors.Wrap(connErr, "failed to close session")
	}
	return errors.Wrap(dbErr, "failed to close database")
}

// Connected reports whether the session is open.
func (a *MySQLAdapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn != nil
}

// Ping checks if the session is alive.
func (a *MySQLAdapter) Ping(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return &sphinxql.ConnectionError{Op: "ping", Cause: errNotConnected}
	}
	return classify("ping", "", a.conn.PingContext(ctx))
}

// Escape returns value as a quoted string literal.
func (a *MySQLAdapter) Escape(value string) (string, error) {
	return Escape(value)
}

// Query runs one statement. Statements that return rows are read completely;
// for the others only the affected row count is kept.
func (a *MySQLAdapter) Query(ctx context.Context, query string) (*sphinxql.ResultSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return nil, &sphinxql.ConnectionError{Op: "query", Cause: errNotConnected}
	}

	if !ReturnsRows(query) {
		res, err := a.conn.ExecContext(ctx, query)
		if err != nil {
			return nil, classify("query", query, err)
		}
		affected, _ := res.RowsAffected()
		return sphinxql.NewResultSet(nil, nil, affected), nil
	}

	rows, err := a.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("query", query, err)
	}
	defer rows.Close()

	set, err := readResultSet(rows)
	if err != nil {
		return nil, classify("query", query, err)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("query", query, err)
	}
	return set, nil
}

// MultiQuery sends queue as one multi statement. The driver skips results
// without columns, so statements that do not return rows get an empty
// ResultSet in their position. A SELECT with FACET clauses contributes one
// ResultSet per facet after its own.
func (a *MySQLAdapter) MultiQuery(ctx context.Context, queue []string) (*sphinxql.MultiResultSet, error) {
	if len(queue) == 0 {
		return nil, sphinxql.ErrEmptyQueue
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return nil, &sphinxql.ConnectionError{Op: "multi query", Cause: errNotConnected}
	}

	batch := strings.Join(queue, ";\n")
	rows, err := a.conn.QueryContext(ctx, batch)
	if err != nil {
		return nil, classify("multi query", batch, err)
	}
	defer rows.Close()

	sets := make([]*sphinxql.ResultSet, 0, len(queue))
	first := true
	for _, query := range queue {
		expected := ResultSets(query)
		if expected == 0 {
			sets = append(sets, sphinxql.NewResultSet(nil, nil, 0))
			continue
		}

		for n := 0; n < expected; n++ {
			if !first && !rows.NextResultSet() {
				if err := rows.Err(); err != nil {
					return nil, classify("multi query", query, err)
				}
				return nil, &sphinxql.DatabaseError{Message: "missing result set", Query: query}
			}
			first = false

			set, err := readResultSet(rows)
			if err != nil {
				return nil, classify("multi query", query, err)
			}
			sets = append(sets, set)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, classify("multi query", batch, err)
	}
	return sphinxql.NewMultiResultSet(sets...), nil
}

// readResultSet buffers the current result set of rows. Text protocol values
// arrive as bytes and are stored as strings.
func readResultSet(rows *sql.Rows) (*sphinxql.ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var data [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sphinxql.NewResultSet(columns, data, 0), nil
}

// Ensure MySQLAdapter implements Adapter interface.
var _ database.Adapter = (*MySQLAdapter)(nil)
