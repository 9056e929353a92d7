// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by *sql.DB, *sql.Conn and *sql.Tx,
// and a helper that scopes one unit of work to a single pooled connection.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithConn checks out a dedicated connection from db, runs fn with it and
// returns the connection to the pool on every exit path, panics included.
//
// Typical use:
//
//	err := dbx.WithConn(ctx, db, func(ctx context.Context, conn dbx.DBTX) error {
//	    return conn.QueryRowContext(ctx, "SELECT ...").Scan(&v)
//	})
func WithConn(ctx context.Context, db *sql.DB, fn func(ctx context.Context, conn DBTX) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}
