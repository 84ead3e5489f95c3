package app

import (
	"context"
	"time"

	"github.com/AdilAzhari/car-rental-api/internal/cache"
)

// FleetStats are the dashboard counts the admin surface shows.
type FleetStats struct {
	TotalVehicles       int `json:"total_vehicles"`
	AvailableVehicles   int `json:"available_vehicles"`
	PendingReservations int `json:"pending_reservations"`
	ActiveReservations  int `json:"active_reservations"`
}

type StatsRepository interface {
	FleetStats(ctx context.Context) (FleetStats, error)
}

const (
	fleetStatsCacheKey = "stats:fleet"
	defaultStatsTTL    = 5 * time.Minute
)

type StatsService struct {
	repo  StatsRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewStatsService builds a stats reader. cache may be nil, in which case
// every call hits the repository.
func NewStatsService(repo StatsRepository, c cache.Cache, ttl time.Duration) *StatsService {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsService{repo: repo, cache: c, ttl: ttl}
}

func (s *StatsService) FleetStats(ctx context.Context) (FleetStats, error) {
	var stats FleetStats
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, fleetStatsCacheKey, &stats); err == nil && hit {
			return stats, nil
		}
	}

	stats, err := s.repo.FleetStats(ctx)
	if err != nil {
		return FleetStats{}, err
	}

	if s.cache != nil {
		// Best effort; a cold cache only costs the next caller a query.
		_ = s.cache.Set(ctx, fleetStatsCacheKey, stats, s.ttl)
	}
	return stats, nil
}
