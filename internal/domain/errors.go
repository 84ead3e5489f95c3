package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleNotBookable  = errors.New("vehicle not bookable")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrInvalidID           = errors.New("invalid id")
	ErrRenterRequired      = errors.New("renter id required")
	ErrTransientConflict   = errors.New("transient storage conflict")
	ErrRetryExhausted      = errors.New("transient storage conflict: retries exhausted")
)

// ConflictError is returned when a requested range overlaps an existing
// reservation, whether caught by the locked re-check or by the storage
// exclusion constraint. It carries enough for the caller to ask the
// conflict service for resolution suggestions.
type ConflictError struct {
	VehicleID string
	StartDate time.Time
	EndDate   time.Time
	// Conflicts holds the overlapping reservations when the application-level
	// re-check found them. Empty when the exclusion constraint fired.
	Conflicts []Reservation
	// Constraint is true when the storage backstop rejected the insert.
	Constraint bool
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %s unavailable for %s..%s",
		e.VehicleID,
		e.StartDate.Format("2006-01-02"),
		e.EndDate.Format("2006-01-02"),
	)
}

// AsConflictError unwraps err into a *ConflictError, if it is one.
func AsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
