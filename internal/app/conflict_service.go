package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AdilAzhari/car-rental-api/internal/domain"
)

// ConflictRepository is the read-only view the conflict service needs.
// None of these queries lock; the authoritative gate is BookingService.
type ConflictRepository interface {
	GetVehicle(ctx context.Context, id string) (domain.Vehicle, error)
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	// FindOverlapping returns non-deleted reservations of the vehicle whose
	// status blocks availability and whose inclusive range overlaps
	// [start, end], ordered by start date ascending. excludeID, when not
	// empty, is left out of the result set.
	FindOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) ([]domain.Reservation, error)
	// ListSimilarVehicles returns bookable vehicles other than ref that share
	// its category or whose daily rate is within priceBand of ref's.
	ListSimilarVehicles(ctx context.Context, ref domain.Vehicle, priceBand float64, limit int) ([]domain.Vehicle, error)
}

const (
	defaultSearchDaysBefore      = 14
	defaultSearchDaysAfter       = 30
	defaultPriceBand             = 0.20
	defaultMaxDateSuggestions    = 3
	defaultMaxVehicleSuggestions = 3
)

type ConflictService struct {
	repo ConflictRepository

	searchDaysBefore      int
	searchDaysAfter       int
	priceBand             float64
	maxDateSuggestions    int
	maxVehicleSuggestions int
}

type ConflictServiceOption func(*ConflictService)

// WithSearchWindow overrides how far before and after the requested range
// the alternative-date scan looks.
func WithSearchWindow(daysBefore, daysAfter int) ConflictServiceOption {
	return func(s *ConflictService) {
		if daysBefore >= 0 {
			s.searchDaysBefore = daysBefore
		}
		if daysAfter >= 0 {
			s.searchDaysAfter = daysAfter
		}
	}
}

// WithPriceBand overrides the relative daily-rate tolerance for similar
// vehicles (0.20 means ±20%).
func WithPriceBand(band float64) ConflictServiceOption {
	return func(s *ConflictService) {
		if band > 0 {
			s.priceBand = band
		}
	}
}

// WithMaxSuggestions overrides how many date and vehicle suggestions a
// conflict report carries.
func WithMaxSuggestions(dates, vehicles int) ConflictServiceOption {
	return func(s *ConflictService) {
		if dates > 0 {
			s.maxDateSuggestions = dates
		}
		if vehicles > 0 {
			s.maxVehicleSuggestions = vehicles
		}
	}
}

func NewConflictService(repo ConflictRepository, opts ...ConflictServiceOption) *ConflictService {
	svc := &ConflictService{
		repo:                  repo,
		searchDaysBefore:      defaultSearchDaysBefore,
		searchDaysAfter:       defaultSearchDaysAfter,
		priceBand:             defaultPriceBand,
		maxDateSuggestions:    defaultMaxDateSuggestions,
		maxVehicleSuggestions: defaultMaxVehicleSuggestions,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type DetectConflictsInput struct {
	VehicleID            string
	StartDate            time.Time
	EndDate              time.Time
	ExcludeReservationID string
}

// DetectConflicts is the advisory check: it reports overlapping reservations
// for the requested range and, when there are any, proposes resolutions.
func (s *ConflictService) DetectConflicts(ctx context.Context, in DetectConflictsInput) (domain.ConflictReport, error) {
	start, end, err := normalizeRange(in.StartDate, in.EndDate)
	if err != nil {
		return domain.ConflictReport{}, err
	}

	vehicle, err := s.repo.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return domain.ConflictReport{}, err
	}

	conflicts, err := s.repo.FindOverlapping(ctx, vehicle.ID, start, end, in.ExcludeReservationID)
	if err != nil {
		return domain.ConflictReport{}, err
	}

	report := domain.ConflictReport{
		HasConflicts:      len(conflicts) > 0,
		Conflicts:         domain.Summarize(conflicts),
		ResolutionOptions: []domain.ResolutionOption{},
	}
	if !report.HasConflicts {
		return report, nil
	}

	dates, err := s.findAlternativeDates(ctx, vehicle.ID, start, end, s.maxDateSuggestions, in.ExcludeReservationID)
	if err != nil {
		return domain.ConflictReport{}, err
	}
	if len(dates) > 0 {
		report.ResolutionOptions = append(report.ResolutionOptions, domain.ResolutionOption{
			Type:  domain.ResolutionAlternativeDates,
			Dates: dates,
		})
	}

	vehicles, err := s.findSimilarAvailableVehicles(ctx, vehicle, start, end, s.maxVehicleSuggestions)
	if err != nil {
		return domain.ConflictReport{}, err
	}
	if len(vehicles) > 0 {
		report.ResolutionOptions = append(report.ResolutionOptions, domain.ResolutionOption{
			Type:     domain.ResolutionAlternativeVehicles,
			Vehicles: vehicles,
		})
	}

	// The waitlist option carries no computed content; it signals that the
	// caller may offer to notify the renter on cancellation.
	report.ResolutionOptions = append(report.ResolutionOptions, domain.ResolutionOption{
		Type: domain.ResolutionWaitlist,
	})

	return report, nil
}

// ValidateBookingUpdate checks new dates for an existing reservation. The
// reservation is excluded from the check so it never conflicts with itself.
func (s *ConflictService) ValidateBookingUpdate(ctx context.Context, reservationID string, newStart, newEnd time.Time) (domain.ConflictReport, error) {
	reservation, err := s.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return domain.ConflictReport{}, err
	}

	return s.DetectConflicts(ctx, DetectConflictsInput{
		VehicleID:            reservation.VehicleID,
		StartDate:            newStart,
		EndDate:              newEnd,
		ExcludeReservationID: reservation.ID,
	})
}

// FindAlternativeDates scans the search window day by day for conflict-free
// windows of the same duration as the requested range.
func (s *ConflictService) FindAlternativeDates(ctx context.Context, vehicleID string, start, end time.Time, maxSuggestions int) ([]domain.DateSuggestion, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.findAlternativeDates(ctx, vehicleID, start, end, maxSuggestions, "")
}

func (s *ConflictService) findAlternativeDates(ctx context.Context, vehicleID string, start, end time.Time, maxSuggestions int, excludeID string) ([]domain.DateSuggestion, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxDateSuggestions
	}

	duration := domain.DaysBetween(start, end)
	suggestions := make([]domain.DateSuggestion, 0, maxSuggestions)

	windows := newDateWindows(start, duration, s.searchDaysBefore, s.searchDaysAfter)
	for {
		candStart, candEnd, ok := windows.Next()
		if !ok {
			break
		}
		// The requested range is already known to conflict; a window that
		// touches it is a no-op suggestion.
		if domain.Overlaps(candStart, candEnd, start, end) {
			continue
		}

		conflicts, err := s.repo.FindOverlapping(ctx, vehicleID, candStart, candEnd, excludeID)
		if err != nil {
			return nil, fmt.Errorf("scan window %s: %w", candStart.Format("2006-01-02"), err)
		}
		if len(conflicts) > 0 {
			continue
		}

		suggestions = append(suggestions, domain.DateSuggestion{
			StartDate:         candStart,
			EndDate:           candEnd,
			DurationDays:      duration,
			DaysFromRequested: domain.DaysBetween(start, candStart),
		})
		if len(suggestions) >= maxSuggestions {
			break
		}
	}

	return suggestions, nil
}

// FindSimilarAvailableVehicles suggests bookable vehicles of similar
// category or price that are free for the requested range.
func (s *ConflictService) FindSimilarAvailableVehicles(ctx context.Context, vehicleID string, start, end time.Time, maxSuggestions int) ([]domain.VehicleSuggestion, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return s.findSimilarAvailableVehicles(ctx, vehicle, start, end, maxSuggestions)
}

func (s *ConflictService) findSimilarAvailableVehicles(ctx context.Context, ref domain.Vehicle, start, end time.Time, maxSuggestions int) ([]domain.VehicleSuggestion, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxVehicleSuggestions
	}

	// Over-fetch so that candidates lost to conflicts still leave enough.
	pool, err := s.repo.ListSimilarVehicles(ctx, ref, s.priceBand, 2*maxSuggestions)
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.VehicleSuggestion, 0, maxSuggestions)
	for _, candidate := range pool {
		conflicts, err := s.repo.FindOverlapping(ctx, candidate.ID, start, end, "")
		if err != nil {
			return nil, fmt.Errorf("check candidate %s: %w", candidate.ID, err)
		}
		if len(conflicts) > 0 {
			continue
		}

		suggestions = append(suggestions, domain.VehicleSuggestion{
			VehicleID:            candidate.ID,
			Make:                 candidate.Make,
			Model:                candidate.Model,
			Category:             candidate.Category,
			DailyRateCents:       candidate.DailyRateCents,
			Location:             candidate.Location,
			AvgRating:            candidate.AvgRating,
			PriceDifferenceCents: candidate.DailyRateCents - ref.DailyRateCents,
		})
		if len(suggestions) >= maxSuggestions {
			break
		}
	}

	// Closer price matches first, for usability.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return abs64(suggestions[i].PriceDifferenceCents) < abs64(suggestions[j].PriceDifferenceCents)
	})

	return suggestions, nil
}

// dateWindows lazily produces candidate windows of a fixed duration, one
// per day, from daysBefore ahead of the requested start through daysAfter
// past the requested end.
type dateWindows struct {
	next     time.Time
	last     time.Time
	duration int
}

func newDateWindows(start time.Time, durationDays, daysBefore, daysAfter int) *dateWindows {
	return &dateWindows{
		next:     domain.Day(start).AddDate(0, 0, -daysBefore),
		last:     domain.Day(start).AddDate(0, 0, durationDays+daysAfter),
		duration: durationDays,
	}
}

func (w *dateWindows) Next() (start, end time.Time, ok bool) {
	if w.next.After(w.last) {
		return time.Time{}, time.Time{}, false
	}
	start = w.next
	end = start.AddDate(0, 0, w.duration)
	w.next = w.next.AddDate(0, 0, 1)
	return start, end, true
}

func normalizeRange(start, end time.Time) (time.Time, time.Time, error) {
	start, end = domain.Day(start), domain.Day(end)
	if start.IsZero() || end.IsZero() || start.After(end) {
		return time.Time{}, time.Time{}, domain.ErrInvalidDateRange
	}
	return start, end, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
