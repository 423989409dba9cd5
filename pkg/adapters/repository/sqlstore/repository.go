// Package sqlstore persists profiles and ordered links through database/sql.
// It runs on local SQLite (modernc), Turso (libsql) or Postgres (pgx).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/repository/sqlstore/migrations"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/dbx"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db      *sql.DB
	dialect dialect
	locks   *ownerLocks
}

// Open connects to dbURL, applies pending migrations and returns the store.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	d := dialectFor(dbURL)
	dsn := dbURL
	if d.name == sqliteDialect.name {
		dsn = sqliteDSN(dbURL)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if d.singleConn {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return newStore(db, d), nil
}

func newStore(db *sql.DB, d dialect) *Store {
	return &Store{db: db, dialect: d, locks: newOwnerLocks()}
}

func migrate(ctx context.Context, db *sql.DB, d dialect) error {
	fsys, err := fs.Sub(migrations.FS, d.migration)
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(d.goose, db, fsys)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect names the backend in use, for logs.
func (s *Store) Dialect() string {
	return s.dialect.name
}

// withOwnerTx runs fn in a transaction that is linearized with every other
// owner-scoped write of the same owner.
func (s *Store) withOwnerTx(ctx context.Context, ownerID string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	var prelude []dbx.Stmt
	if s.dialect.ownerLock != "" {
		prelude = append(prelude, dbx.Stmt{Query: s.q(s.dialect.ownerLock), Args: []any{ownerID}})
	}
	return mapErr(dbx.WithTx(ctx, s.db, nil, prelude, fn))
}

func (s *Store) q(query string) string {
	return s.dialect.rebind(query)
}

// mapErr passes domain errors through and turns anything else from the driver
// into ErrStorageUnavailable.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalid),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrStorageUnavailable):
		return err
	default:
		return domain.Unavailable(err)
	}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// ownerLocks hands out one mutex per owner id, dropped when unused.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*ownerLock)}
}

func (l *ownerLocks) lock(ownerID string) (unlock func()) {
	l.mu.Lock()
	ol, ok := l.locks[ownerID]
	if !ok {
		ol = &ownerLock{}
		l.locks[ownerID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()
	return func() {
		ol.mu.Unlock()
		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}

// Ensure interface compliance
var (
	_ ports.ProfileRepository = (*Store)(nil)
	_ ports.LinkRepository    = (*Store)(nil)
)
