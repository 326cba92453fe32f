package repository

import (
	"context"
	"fmt"

	"survey-grader/internal/domain"
	"survey-grader/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// contextKey is the key type for context values.
type contextKey string

// TransactionContextKey carries the active transaction in the context.
const TransactionContextKey contextKey = "tx"

// GetExecutor resolves the query executor for ctx: the transaction put
// there by WithTransaction when one is active, the base handle otherwise.
func GetExecutor(ctx context.Context, db DBTX) DBTX {
	if tx, ok := ctx.Value(TransactionContextKey).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// TransactionManagerAdapter implements domain.TransactionManager with sqlx.
type TransactionManagerAdapter struct {
	db *sqlx.DB
}

func NewTransactionManagerAdapter(db *sqlx.DB) domain.TransactionManager {
	return &TransactionManagerAdapter{db: db}
}

// rollbackLogged rolls back and logs any failure, for paths that cannot
// return an error.
func rollbackLogged(tx *sqlx.Tx, reason string) {
	if err := tx.Rollback(); err != nil {
		logger.Get().Error("Transaction rollback failed",
			zap.String("reason", reason),
			zap.Error(err))
	}
}

// WithTransaction runs fn inside a transaction. Repositories called with
// the context fn receives pick the transaction up through GetExecutor.
// A panic inside fn rolls back and then resumes the panic.
func (tma *TransactionManagerAdapter) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tma.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollbackLogged(tx, "panic inside transaction")
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, TransactionContextKey, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
