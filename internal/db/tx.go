package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql methods shared by *sql.DB and *sql.Tx.
// Repositories execute against a DBTX so the same method runs inside or outside
// a transaction depending on the caller's context.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Conn returns the transaction carried by ctx if InTx started one, otherwise fallback.
// Repositories call this per operation so multi-step flows (token redemption plus the
// mutation it authorizes) commit or roll back as one unit.
func Conn(ctx context.Context, fallback DBTX) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return fallback
}

// TxManager runs functions inside a database transaction carried on the context.
type TxManager struct {
	pool *sql.DB
}

// NewTxManager returns a TxManager over the given connection pool.
func NewTxManager(pool *sql.DB) *TxManager {
	return &TxManager{pool: pool}
}

// InTx begins a transaction, stores it on the context passed to fn, and commits if fn
// returns nil; otherwise the transaction is rolled back and fn's error returned.
// Nested calls reuse the outer transaction.
func (m *TxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := m.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
