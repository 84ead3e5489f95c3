package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdilAzhari/car-rental-api/internal/domain"
)

type txKey struct{}

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isTransient(err) {
			return fmt.Errorf("%w: %s", domain.ErrTransientConflict, err)
		}
		return err
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isExclusionViolation matches the range-exclusion backstop constraint.
func isExclusionViolation(err error) bool {
	return pgErrCode(err) == "23P01"
}

func isInvalidUUID(err error) bool {
	return pgErrCode(err) == "22P02"
}

// isTransient matches serialization failures, deadlocks and lock timeouts,
// which the booking path retries with backoff.
func isTransient(err error) bool {
	switch pgErrCode(err) {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}
