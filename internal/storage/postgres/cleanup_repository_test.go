package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdilAzhari/car-rental-api/internal/app"
	"github.com/AdilAzhari/car-rental-api/internal/clock"
	"github.com/AdilAzhari/car-rental-api/internal/domain"
	"github.com/AdilAzhari/car-rental-api/internal/testutil"
)

func TestCleanupRepository_LockAndCancel(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewCleanupRepository(pool)
	vehicleID := testutil.InsertVehicle(t, ctx, pool, "sedan", 10000)

	now := time.Now().UTC()
	staleID := testutil.InsertReservation(t, ctx, pool, vehicleID, domain.Reservation{
		StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12),
		CreatedAt: now.Add(-2 * time.Hour),
	})
	freshID := testutil.InsertReservation(t, ctx, pool, vehicleID, domain.Reservation{
		StartDate: date(2024, 6, 20), EndDate: date(2024, 6, 22),
		CreatedAt: now.Add(-10 * time.Minute),
	})
	paidID := testutil.InsertReservation(t, ctx, pool, vehicleID, domain.Reservation{
		StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 3),
		PaymentStatus: domain.PaymentStatusPaid,
		CreatedAt:     now.Add(-3 * time.Hour),
	})

	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		ids, err := repo.LockExpiredPending(txCtx, now.Add(-time.Hour))
		require.NoError(t, err)
		require.Equal(t, []string{staleID}, ids)

		n, err := repo.CancelReservations(txCtx, ids, now)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
	require.NoError(t, err)

	conflicts := NewConflictRepository(pool)
	stale, err := conflicts.GetReservation(ctx, staleID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, stale.Status)
	assert.Equal(t, domain.PaymentStatusFailed, stale.PaymentStatus)

	fresh, err := conflicts.GetReservation(ctx, freshID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, fresh.Status)

	paid, err := conflicts.GetReservation(ctx, paidID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, paid.Status)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
}

func TestCleanupService_SweepFreesDates(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	vehicleID := testutil.InsertVehicle(t, ctx, pool, "sedan", 10000)
	now := time.Now().UTC()
	testutil.InsertReservation(t, ctx, pool, vehicleID, domain.Reservation{
		StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12),
		CreatedAt: now.Add(-2 * time.Hour),
	})

	svc := app.NewCleanupService(NewCleanupRepository(pool), clock.NewSystem(), zerolog.Nop())

	cancelled, err := svc.CleanupExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	// Idempotent: the second sweep finds nothing.
	cancelled, err = svc.CleanupExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Zero(t, cancelled)

	// The freed range can be booked again.
	overlaps, err := NewConflictRepository(pool).FindOverlapping(ctx, vehicleID, date(2024, 6, 10), date(2024, 6, 12), "")
	require.NoError(t, err)
	assert.Empty(t, overlaps)
}
