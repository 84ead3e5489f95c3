package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdilAzhari/car-rental-api/internal/domain"
)

// ConflictRepository serves the advisory conflict checks. Point-in-time
// reads only; no locks.
type ConflictRepository struct {
	pool *pgxpool.Pool
}

func NewConflictRepository(pool *pgxpool.Pool) *ConflictRepository {
	return &ConflictRepository{pool: pool}
}

func (r *ConflictRepository) GetVehicle(ctx context.Context, id string) (domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Vehicle{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Vehicle{}, domain.ErrVehicleNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (r *ConflictRepository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 AND deleted_at IS NULL`
	res, err := scanReservation(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ConflictRepository) FindOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) ([]domain.Reservation, error) {
	query := `
SELECT ` + reservationColumns + `
FROM reservations
WHERE vehicle_id = $1
  AND deleted_at IS NULL
  AND status IN ('pending', 'confirmed', 'ongoing')
  AND start_date <= $3 AND end_date >= $2
  AND ($4 = '' OR id::text <> $4)
ORDER BY start_date ASC`

	rows, err := r.query(ctx, query, vehicleID, start, end, excludeID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("find overlapping: %w", err)
	}
	out, err := collectReservations(rows)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("find overlapping: %w", err)
	}
	return out, nil
}

func (r *ConflictRepository) ListSimilarVehicles(ctx context.Context, ref domain.Vehicle, priceBand float64, limit int) ([]domain.Vehicle, error) {
	low := int64(float64(ref.DailyRateCents) * (1 - priceBand))
	high := int64(float64(ref.DailyRateCents) * (1 + priceBand))

	query := `
SELECT ` + vehicleColumns + `
FROM vehicles
WHERE id <> $1
  AND is_available
  AND status = 'published'
  AND (category = $2 OR daily_rate_cents BETWEEN $3 AND $4)
ORDER BY ABS(daily_rate_cents - $5), created_at
LIMIT $6`

	rows, err := r.query(ctx, query, ref.ID, ref.Category, low, high, ref.DailyRateCents, limit)
	if err != nil {
		return nil, fmt.Errorf("list similar vehicles: %w", err)
	}
	defer rows.Close()

	var out []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("list similar vehicles: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *ConflictRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ConflictRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
