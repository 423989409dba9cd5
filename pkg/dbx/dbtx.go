// Package dbx holds the database/sql helpers shared by repositories.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the subset of database/sql used by the repositories. *sql.DB and
// *sql.Tx both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner starts transactions. *sql.DB and *sql.Conn satisfy it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ErrCommit marks a failed COMMIT. The transaction's effects are unknown to
// the caller, so it must not be retried blindly.
var ErrCommit = errors.New("commit failed")

// WithTx runs fn inside a transaction. Each statement in prelude runs first,
// with args, on the same transaction (advisory locks and the like). The
// transaction commits when fn returns nil and rolls back on error or panic;
// panics are rethrown. A failed rollback is joined onto fn's error.
func WithTx(ctx context.Context, db Beginner, opts *sql.TxOptions, prelude []Stmt, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("%w: %w", ErrCommit, cErr)
		}
	}()

	for _, st := range prelude {
		if _, err = tx.ExecContext(ctx, st.Query, st.Args...); err != nil {
			return err
		}
	}
	return fn(ctx, tx)
}

// Stmt is one statement of a transaction prelude.
type Stmt struct {
	Query string
	Args  []any
}
