package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AdilAzhari/car-rental-api/internal/clock"
	"github.com/AdilAzhari/car-rental-api/internal/metrics"
)

// CleanupRepository locks and cancels stale pending reservations. Locking
// the rows before updating serializes the sweep against in-flight creators
// touching the same vehicles.
type CleanupRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockExpiredPending returns, under row locks, the ids of reservations
	// still pending (and unpaid) that were created before cutoff.
	LockExpiredPending(ctx context.Context, cutoff time.Time) ([]string, error)
	// CancelReservations sets status=cancelled and payment_status=failed.
	CancelReservations(ctx context.Context, ids []string, now time.Time) (int, error)
}

const defaultPendingTimeout = time.Hour

type CleanupService struct {
	repo   CleanupRepository
	clock  clock.Clock
	logger zerolog.Logger

	pendingTimeout time.Duration
}

type CleanupServiceOption func(*CleanupService)

// WithPendingTimeout overrides how long an unpaid pending reservation may
// hold its dates before the sweep cancels it.
func WithPendingTimeout(d time.Duration) CleanupServiceOption {
	return func(s *CleanupService) {
		if d > 0 {
			s.pendingTimeout = d
		}
	}
}

func NewCleanupService(repo CleanupRepository, clk clock.Clock, logger zerolog.Logger, opts ...CleanupServiceOption) *CleanupService {
	svc := &CleanupService{
		repo:           repo,
		clock:          clk,
		logger:         logger,
		pendingTimeout: defaultPendingTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CleanupExpiredReservations cancels unpaid pending reservations older than
// the timeout, returning their held dates to the pool. Idempotent: a second
// run with no new expirations cancels zero.
func (s *CleanupService) CleanupExpiredReservations(ctx context.Context) (int, error) {
	now := s.clock.Now()
	cutoff := now.Add(-s.pendingTimeout)

	var cancelled int
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ids, err := s.repo.LockExpiredPending(txCtx, cutoff)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		cancelled, err = s.repo.CancelReservations(txCtx, ids, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	if cancelled > 0 {
		metrics.AddReservationsExpired(cancelled)
		s.logger.Info().
			Int("cancelled", cancelled).
			Time("cutoff", cutoff).
			Msg("expired pending reservations cancelled")
	}
	return cancelled, nil
}
