package http

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AdilAzhari/car-rental-api/internal/app"
)

type StatsReader interface {
	FleetStats(ctx context.Context) (app.FleetStats, error)
}

// HandleFleetStats serves the cached fleet counts for the admin dashboard.
func HandleFleetStats(svc StatsReader, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.FleetStats(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("fleet stats failed")
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

type Cleaner interface {
	CleanupExpiredReservations(ctx context.Context) (int, error)
}

type cleanupResponse struct {
	Cancelled int `json:"cancelled"`
}

// HandleCleanup triggers the expired-booking sweep on demand; the same
// sweep also runs on a schedule.
func HandleCleanup(svc Cleaner, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.CleanupExpiredReservations(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("cleanup failed")
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, cleanupResponse{Cancelled: count})
	}
}
