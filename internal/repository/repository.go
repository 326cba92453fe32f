package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx.
// Repositories query through it so the same code runs with or without
// a transaction.
type DBTX interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
