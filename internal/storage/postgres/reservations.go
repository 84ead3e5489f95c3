package postgres

import (
	"github.com/jackc/pgx/v5"

	"github.com/AdilAzhari/car-rental-api/internal/domain"
)

const reservationColumns = `id, vehicle_id, renter_id, start_date, end_date, status, payment_status, created_at, updated_at, deleted_at`

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var r domain.Reservation
	var status, paymentStatus string
	err := row.Scan(
		&r.ID,
		&r.VehicleID,
		&r.RenterID,
		&r.StartDate,
		&r.EndDate,
		&status,
		&paymentStatus,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.DeletedAt,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	r.Status = domain.ReservationStatus(status)
	r.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return r, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const vehicleColumns = `id, make, model, category, daily_rate_cents, location, avg_rating, is_available, status, created_at`

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var v domain.Vehicle
	var status string
	err := row.Scan(
		&v.ID,
		&v.Make,
		&v.Model,
		&v.Category,
		&v.DailyRateCents,
		&v.Location,
		&v.AvgRating,
		&v.IsAvailable,
		&status,
		&v.CreatedAt,
	)
	if err != nil {
		return domain.Vehicle{}, err
	}
	v.Status = domain.VehicleStatus(status)
	return v, nil
}
