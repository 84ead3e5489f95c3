package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdilAzhari/car-rental-api/internal/domain"
)

// CleanupRepository backs the expired-booking sweep.
type CleanupRepository struct {
	pool *pgxpool.Pool
}

func NewCleanupRepository(pool *pgxpool.Pool) *CleanupRepository {
	return &CleanupRepository{pool: pool}
}

func (r *CleanupRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CleanupRepository) LockExpiredPending(ctx context.Context, cutoff time.Time) ([]string, error) {
	const query = `
SELECT id
FROM reservations
WHERE status = 'pending'
  AND payment_status = 'pending'
  AND deleted_at IS NULL
  AND created_at < $1
ORDER BY created_at
FOR UPDATE`

	rows, err := r.query(ctx, query, cutoff)
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransientConflict, err)
		}
		return nil, fmt.Errorf("lock expired pending: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("lock expired pending: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CleanupRepository) CancelReservations(ctx context.Context, ids []string, now time.Time) (int, error) {
	const stmt = `
UPDATE reservations
SET status = 'cancelled', payment_status = 'failed', updated_at = $2
WHERE id = ANY($1)`

	tag, err := r.exec(ctx, stmt, ids, now)
	if err != nil {
		return 0, fmt.Errorf("cancel reservations: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *CleanupRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CleanupRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
