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

// BookingRepository is the write side of the availability guard. Its reads
// run inside the creation transaction and take row locks.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) GetVehicleForUpdate(ctx context.Context, id string) (domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	v, err := scanVehicle(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Vehicle{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Vehicle{}, domain.ErrVehicleNotFound
		}
		if isTransient(err) {
			return domain.Vehicle{}, fmt.Errorf("%w: %s", domain.ErrTransientConflict, err)
		}
		return domain.Vehicle{}, fmt.Errorf("get vehicle for update: %w", err)
	}
	return v, nil
}

func (r *BookingRepository) FindOverlappingForUpdate(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Reservation, error) {
	query := `
SELECT ` + reservationColumns + `
FROM reservations
WHERE vehicle_id = $1
  AND deleted_at IS NULL
  AND status IN ('pending', 'confirmed', 'ongoing')
  AND start_date <= $3 AND end_date >= $2
ORDER BY start_date ASC
FOR UPDATE`

	rows, err := r.query(ctx, query, vehicleID, start, end)
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransientConflict, err)
		}
		return nil, fmt.Errorf("find overlapping for update: %w", err)
	}
	out, err := collectReservations(rows)
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransientConflict, err)
		}
		return nil, fmt.Errorf("find overlapping for update: %w", err)
	}
	return out, nil
}

func (r *BookingRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, vehicle_id, renter_id, start_date, end_date, status, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.VehicleID,
		res.RenterID,
		res.StartDate,
		res.EndDate,
		res.Status,
		res.PaymentStatus,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		// The exclusion constraint is the backstop for races that slip past
		// the locked re-check.
		if isExclusionViolation(err) {
			return &domain.ConflictError{
				VehicleID:  res.VehicleID,
				StartDate:  res.StartDate,
				EndDate:    res.EndDate,
				Constraint: true,
			}
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isTransient(err) {
			return fmt.Errorf("%w: %s", domain.ErrTransientConflict, err)
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
