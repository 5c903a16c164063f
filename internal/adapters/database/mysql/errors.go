package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// classify maps driver errors onto the sphinxql error kinds. Server errors
// become DatabaseError, broken links ConnectionError.
func classify(op, query string, err error) error {
	if err == nil {
		return nil
	}

	var serverErr *mysql.MySQLError
	if errors.As(err, &serverErr) {
		return &sphinxql.DatabaseError{
			Code:    int(serverErr.Number),
			Message: serverErr.Message,
			Query:   query,
			Cause:   err,
		}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr):
		return &sphinxql.ConnectionError{Op: op, Cause: err}
	}

	return &sphinxql.DatabaseError{Message: err.Error(), Query: query, Cause: err}
}
