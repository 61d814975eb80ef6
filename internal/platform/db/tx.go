package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txOptions pins write paths to REPEATABLE READ; the conditional updates in
// the repositories rely on rereads seeing a stable snapshot.
var txOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

// WithTx begins a transaction, runs fn, and commits when fn returns nil. Any
// error from fn rolls the transaction back and is returned unchanged; the
// deferred rollback is a no-op once the commit went through.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return fmt.Errorf("platform/db: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit transaction: %w", err)
	}
	return nil
}
