package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "car_rental",
			Name:      "booking_created_total",
			Help:      "Count of reservations created.",
		},
	)

	bookingConflict = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "car_rental",
			Name:      "booking_conflict_total",
			Help:      "Count of rejected bookings by detection source (recheck or constraint).",
		},
		[]string{"source"},
	)

	txRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "car_rental",
			Name:      "tx_retries_total",
			Help:      "Count of booking transactions retried after a transient storage conflict.",
		},
	)

	reservationsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "car_rental",
			Name:      "reservations_expired_total",
			Help:      "Count of stale pending reservations cancelled by the cleanup sweep.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConflict, txRetries, reservationsExpired)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingConflict(source string) {
	bookingConflict.WithLabelValues(source).Inc()
}

func IncTxRetry() {
	txRetries.Inc()
}

func AddReservationsExpired(n int) {
	reservationsExpired.Add(float64(n))
}
