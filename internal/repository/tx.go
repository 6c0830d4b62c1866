package repository

import (
    "context"
    "database/sql"
)

// executor is the subset of *sql.DB and *sql.Tx the repositories use.
// Every query goes through executorFrom so that a method transparently
// joins a transaction carried in the context.
type executor interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func executorFrom(ctx context.Context, db *sql.DB) executor {
    if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
        return tx
    }
    return db
}

// TxRunner starts transactions and exposes them to repositories via
// the context, so a caller can group several repository calls into
// one atomic commit without the repositories knowing about each
// other. Nested calls join the outer transaction.
type TxRunner struct {
    db *sql.DB
}

// NewTxRunner returns a TxRunner bound to the given database.
func NewTxRunner(db *sql.DB) *TxRunner { return &TxRunner{db: db} }

// WithTx runs fn inside a transaction. The transaction is rolled
// back when fn returns an error and committed otherwise.
func (t *TxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
    if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
        return fn(ctx)
    }
    tx, err := t.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
        _ = tx.Rollback()
        return err
    }
    return tx.Commit()
}
