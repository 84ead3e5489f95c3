package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdilAzhari/car-rental-api/internal/app"
	"github.com/AdilAzhari/car-rental-api/internal/domain"
	"github.com/AdilAzhari/car-rental-api/internal/testutil"
)

func TestStatsRepository_FleetStats(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewStatsRepository(pool)

	empty, err := repo.FleetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.FleetStats{}, empty)

	availableID := testutil.InsertVehicle(t, ctx, pool, "sedan", 10000)
	testutil.InsertVehicle(t, ctx, pool, "suv", 15000)

	unavailableID := testutil.InsertVehicle(t, ctx, pool, "sedan", 9000)
	_, err = pool.Exec(ctx, `UPDATE vehicles SET is_available = FALSE WHERE id = $1`, unavailableID)
	require.NoError(t, err)

	testutil.InsertReservation(t, ctx, pool, availableID, domain.Reservation{
		StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12),
	})
	testutil.InsertReservation(t, ctx, pool, availableID, domain.Reservation{
		StartDate: date(2024, 6, 20), EndDate: date(2024, 6, 22),
		Status: domain.ReservationStatusConfirmed,
	})
	testutil.InsertReservation(t, ctx, pool, availableID, domain.Reservation{
		StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 3),
		Status: domain.ReservationStatusOngoing,
	})
	testutil.InsertReservation(t, ctx, pool, availableID, domain.Reservation{
		StartDate: date(2024, 7, 10), EndDate: date(2024, 7, 12),
		Status: domain.ReservationStatusCancelled,
	})
	deleted := time.Now().UTC()
	testutil.InsertReservation(t, ctx, pool, availableID, domain.Reservation{
		StartDate: date(2024, 8, 1), EndDate: date(2024, 8, 3),
		DeletedAt: &deleted,
	})

	stats, err := repo.FleetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.FleetStats{
		TotalVehicles:       3,
		AvailableVehicles:   2,
		PendingReservations: 1,
		ActiveReservations:  2,
	}, stats)
}
