package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUndefinedTable = "42P01"
	mysqlNoSuchTable = 1146
)

// IsUndefinedTable reports whether err means the queried table has not been
// provisioned. It recognises the typed errors of every supported driver and
// falls back to matching the message text.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUndefinedTable
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoSuchTable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"):
		return true
	case strings.Contains(msg, "no such table"):
		return true
	case strings.Contains(msg, "doesn't exist") && strings.Contains(msg, "table"):
		return true
	}
	return false
}
