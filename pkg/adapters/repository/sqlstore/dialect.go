package sqlstore

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const pgUniqueViolation = "23505"

type dialect struct {
	name      string
	driver    string
	goose     goose.Dialect
	migration string
	// ownerLock is run first in every owner-scoped write transaction.
	ownerLock string
	// singleConn serializes all access through one connection.
	singleConn bool
}

var (
	sqliteDialect = dialect{
		name:       "sqlite",
		driver:     "sqlite",
		goose:      goose.DialectSQLite3,
		migration:  "sqlite",
		singleConn: true,
	}
	libsqlDialect = dialect{
		name:      "libsql",
		driver:    "libsql",
		goose:     goose.DialectSQLite3,
		migration: "sqlite",
	}
	postgresDialect = dialect{
		name:      "postgres",
		driver:    "pgx",
		goose:     goose.DialectPostgres,
		migration: "postgres",
		ownerLock: "SELECT pg_advisory_xact_lock(hashtext(?))",
	}
)

// dialectFor picks the driver from the DSN the same way the deployment
// configures DATABASE_URL: Turso URLs go to libsql, postgres URLs to pgx and
// everything else is a local SQLite file.
func dialectFor(dbURL string) dialect {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return postgresDialect
	case strings.Contains(dbURL, "libsql://"), strings.Contains(dbURL, "wss://"):
		return libsqlDialect
	default:
		return sqliteDialect
	}
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if d.name != postgresDialect.name {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// sqliteDSN adds the pragmas every local connection needs. Write
// transactions take the database lock up front so concurrent writers queue on
// busy_timeout instead of failing on lock upgrade.
func sqliteDSN(dbURL string) string {
	params := []string{}
	if !strings.Contains(dbURL, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dbURL, "_txlock") && !strings.Contains(dbURL, "mode=memory") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dbURL
	}
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + strings.Join(params, "&")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// libsql reports constraint failures as plain text.
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
