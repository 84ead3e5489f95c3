package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/AdilAzhari/car-rental-api/internal/clock"
	"github.com/AdilAzhari/car-rental-api/internal/domain"
	"github.com/AdilAzhari/car-rental-api/internal/metrics"
)

// BookingRepository is the write-side view the availability guard needs.
// FindOverlappingForUpdate must take row locks ("select for update") on the
// vehicle's reservation rows so concurrent creators serialize on them, and
// CreateReservation must surface the storage exclusion constraint as
// *domain.ConflictError.
type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// GetVehicleForUpdate locks the vehicle row, serializing concurrent
	// creators for the same vehicle on one lock.
	GetVehicleForUpdate(ctx context.Context, id string) (domain.Vehicle, error)
	FindOverlappingForUpdate(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Reservation, error)
	CreateReservation(ctx context.Context, reservation domain.Reservation) error
}

const (
	defaultMaxTxAttempts  = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

type BookingService struct {
	repo  BookingRepository
	clock clock.Clock

	maxTxAttempts  int
	retryBaseDelay time.Duration
}

type BookingServiceOption func(*BookingService)

// WithTxRetry overrides the bounded retry policy for transient transaction
// failures (lock contention, deadlock).
func WithTxRetry(attempts int, baseDelay time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if attempts > 0 {
			s.maxTxAttempts = attempts
		}
		if baseDelay > 0 {
			s.retryBaseDelay = baseDelay
		}
	}
}

func NewBookingService(repo BookingRepository, clk clock.Clock, opts ...BookingServiceOption) *BookingService {
	svc := &BookingService{
		repo:           repo,
		clock:          clk,
		maxTxAttempts:  defaultMaxTxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CreateReservationInput struct {
	VehicleID string
	RenterID  string
	StartDate time.Time
	EndDate   time.Time
}

type CreateReservationResult struct {
	Reservation domain.Reservation
	// TotalCents is the rental price over the inclusive day count, at the
	// vehicle's daily rate, for the payment collaborator.
	TotalCents int64
}

// CreateReservation is the authoritative booking gate. It re-checks the
// range under row locks inside a transaction before inserting, so the
// no-overlap invariant holds under concurrent callers; the storage
// exclusion constraint backstops any race that slips through. Transient
// transaction failures are retried with exponential backoff and jitter.
func (s *BookingService) CreateReservation(ctx context.Context, in CreateReservationInput) (CreateReservationResult, error) {
	if in.RenterID == "" {
		return CreateReservationResult{}, domain.ErrRenterRequired
	}
	start, end, err := normalizeRange(in.StartDate, in.EndDate)
	if err != nil {
		return CreateReservationResult{}, err
	}

	var result CreateReservationResult
	for attempt := 0; ; attempt++ {
		err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
			vehicle, err := s.repo.GetVehicleForUpdate(txCtx, in.VehicleID)
			if err != nil {
				return err
			}
			if !vehicle.Bookable() {
				return domain.ErrVehicleNotBookable
			}

			// Closes the gap between the advisory conflict check and this
			// insert: whoever holds these row locks decides the slot.
			existing, err := s.repo.FindOverlappingForUpdate(txCtx, vehicle.ID, start, end)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return &domain.ConflictError{
					VehicleID: vehicle.ID,
					StartDate: start,
					EndDate:   end,
					Conflicts: existing,
				}
			}

			now := s.clock.Now()
			reservation := domain.Reservation{
				ID:            uuid.NewString(),
				VehicleID:     vehicle.ID,
				RenterID:      in.RenterID,
				StartDate:     start,
				EndDate:       end,
				Status:        domain.ReservationStatusPending,
				PaymentStatus: domain.PaymentStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.CreateReservation(txCtx, reservation); err != nil {
				return err
			}

			result = CreateReservationResult{
				Reservation: reservation,
				TotalCents:  int64(reservation.Days()) * vehicle.DailyRateCents,
			}
			return nil
		})
		if err == nil {
			metrics.IncBookingCreated()
			return result, nil
		}

		if ce, ok := domain.AsConflictError(err); ok {
			if ce.Constraint {
				metrics.IncBookingConflict("constraint")
			} else {
				metrics.IncBookingConflict("recheck")
			}
			return CreateReservationResult{}, err
		}
		if !errors.Is(err, domain.ErrTransientConflict) || attempt+1 >= s.maxTxAttempts {
			break
		}

		metrics.IncTxRetry()
		if err := sleepBackoff(ctx, s.retryBaseDelay, attempt); err != nil {
			return CreateReservationResult{}, err
		}
	}

	if errors.Is(err, domain.ErrTransientConflict) {
		// Exhausted retries: a definite failure the caller should retry,
		// semantically distinct from a booking conflict.
		return CreateReservationResult{}, domain.ErrRetryExhausted
	}
	return CreateReservationResult{}, err
}

// sleepBackoff waits baseDelay * 2^attempt plus up to 50% jitter, honoring
// context cancellation.
func sleepBackoff(ctx context.Context, baseDelay time.Duration, attempt int) error {
	delay := baseDelay << uint(attempt)
	delay += time.Duration(rand.Int63n(int64(delay)/2 + 1))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
