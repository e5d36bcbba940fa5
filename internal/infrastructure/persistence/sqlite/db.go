package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"go.uber.org/zap"
)

type contextKey string

const txKey contextKey = "tx"

// DB wraps sql.DB and implements port.TransactionManager. The transaction
// travels in the context so repositories stay unaware of it.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database wrapper
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{
		DB:     sqlDB,
		logger: logger,
	}
}

// WithTransaction runs fn in a transaction. Nested calls join the outer one.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if extractTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// extractTx retrieves transaction from context if present
func extractTx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txKey).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// Executor covers both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn returns the transaction carried by ctx, or db when there is none.
// Repositories call it for every statement so they join the caller's
// transaction.
func Conn(ctx context.Context, db *sql.DB) Executor {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return db
}

// InTransaction reports whether ctx carries a transaction
func InTransaction(ctx context.Context) bool {
	return extractTx(ctx) != nil
}

// Verify interface compliance
var _ port.TransactionManager = (*DB)(nil)
