package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdilAzhari/car-rental-api/internal/app"
)

// StatsRepository computes the fleet counts behind the cached admin stats.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) FleetStats(ctx context.Context) (app.FleetStats, error) {
	const query = `
SELECT
	(SELECT COUNT(*) FROM vehicles),
	(SELECT COUNT(*) FROM vehicles WHERE is_available AND status = 'published'),
	(SELECT COUNT(*) FROM reservations WHERE status = 'pending' AND deleted_at IS NULL),
	(SELECT COUNT(*) FROM reservations WHERE status IN ('confirmed', 'ongoing') AND deleted_at IS NULL)`

	var stats app.FleetStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalVehicles,
		&stats.AvailableVehicles,
		&stats.PendingReservations,
		&stats.ActiveReservations,
	)
	if err != nil {
		return app.FleetStats{}, fmt.Errorf("fleet stats: %w", err)
	}
	return stats, nil
}
