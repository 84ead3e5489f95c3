package domain

import "time"

type ResolutionType string

const (
	ResolutionAlternativeDates    ResolutionType = "alternative_dates"
	ResolutionAlternativeVehicles ResolutionType = "alternative_vehicles"
	ResolutionWaitlist            ResolutionType = "waitlist"
)

// ConflictSummary describes one overlapping reservation, without renter
// details the caller has no business seeing.
type ConflictSummary struct {
	ReservationID string            `json:"reservation_id"`
	StartDate     time.Time         `json:"start_date"`
	EndDate       time.Time         `json:"end_date"`
	Status        ReservationStatus `json:"status"`
}

// DateSuggestion is a conflict-free window of the same duration as the
// requested range. DaysFromRequested is signed; negative means earlier.
type DateSuggestion struct {
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	DurationDays      int       `json:"duration_days"`
	DaysFromRequested int       `json:"days_from_requested"`
}

// VehicleSuggestion is a similar vehicle free for the requested range.
// PriceDifferenceCents is candidate minus original daily rate.
type VehicleSuggestion struct {
	VehicleID            string   `json:"vehicle_id"`
	Make                 string   `json:"make"`
	Model                string   `json:"model"`
	Category             string   `json:"category"`
	DailyRateCents       int64    `json:"daily_rate_cents"`
	Location             string   `json:"location"`
	AvgRating            *float64 `json:"avg_rating,omitempty"`
	PriceDifferenceCents int64    `json:"price_difference_cents"`
}

// ResolutionOption is one way out of a conflict. Exactly one of Dates and
// Vehicles is populated for the computed options; the waitlist option
// carries neither.
type ResolutionOption struct {
	Type     ResolutionType      `json:"type"`
	Dates    []DateSuggestion    `json:"dates,omitempty"`
	Vehicles []VehicleSuggestion `json:"vehicles,omitempty"`
}

// ConflictReport is the orchestrator's answer to "can this range be booked,
// and if not, what instead".
type ConflictReport struct {
	HasConflicts      bool               `json:"has_conflicts"`
	Conflicts         []ConflictSummary  `json:"conflicts"`
	ResolutionOptions []ResolutionOption `json:"resolution_options"`
}

// Summarize projects reservations into conflict summaries, preserving order.
func Summarize(reservations []Reservation) []ConflictSummary {
	out := make([]ConflictSummary, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, ConflictSummary{
			ReservationID: r.ID,
			StartDate:     r.StartDate,
			EndDate:       r.EndDate,
			Status:        r.Status,
		})
	}
	return out
}
