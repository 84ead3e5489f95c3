package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusOngoing   ReservationStatus = "ongoing"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// BlocksAvailability reports whether a reservation in this status holds its
// date range against new bookings. Cancelled and completed reservations do not.
func (s ReservationStatus) BlocksAvailability() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusOngoing:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Reservation holds a vehicle for a renter over an inclusive range of
// calendar days. StartDate and EndDate are day-granularity, UTC midnight.
type Reservation struct {
	ID            string
	VehicleID     string
	RenterID      string
	StartDate     time.Time
	EndDate       time.Time
	Status        ReservationStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Days returns the inclusive day count of the reservation.
func (r Reservation) Days() int {
	return DaysBetween(r.StartDate, r.EndDate) + 1
}
