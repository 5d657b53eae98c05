package txn

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// SQLProvider implements Provider over database/sql. Each unit of work runs
// inside a single transaction, committed when the work succeeds and rolled
// back otherwise. The open transaction is carried in the context and
// retrieved with TxFrom.
type SQLProvider struct {
	db *sql.DB
}

// NewSQLProvider wraps db in a Provider.
func NewSQLProvider(db *sql.DB) *SQLProvider {
	return &SQLProvider{db: db}
}

// InTransaction begins a transaction, runs work with it attached to the
// context, and commits or rolls back based on the work's error.
func (p *SQLProvider) InTransaction(ctx context.Context, work func(ctx context.Context) (any, error)) (any, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("txn: begin: %w", err)
	}

	result, err := work(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("txn: commit: %w", err)
	}
	return result, nil
}

// TxFrom returns the transaction attached to ctx by InTransaction, if any.
func TxFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}
