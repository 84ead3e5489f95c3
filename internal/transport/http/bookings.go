package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/AdilAzhari/car-rental-api/internal/app"
	"github.com/AdilAzhari/car-rental-api/internal/domain"
	"github.com/AdilAzhari/car-rental-api/internal/payments"
)

// BookingCreator is the minimal interface needed to create a reservation.
type BookingCreator interface {
	CreateReservation(ctx context.Context, in app.CreateReservationInput) (app.CreateReservationResult, error)
}

// ConflictDetector produces resolution suggestions for a conflicting range.
type ConflictDetector interface {
	DetectConflicts(ctx context.Context, in app.DetectConflictsInput) (domain.ConflictReport, error)
}

type createBookingRequest struct {
	VehicleID string `json:"vehicle_id"`
	RenterID  string `json:"renter_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type createBookingResponse struct {
	ID            string    `json:"id"`
	VehicleID     string    `json:"vehicle_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalCents    int64     `json:"total_cents"`
	CreatedAt     time.Time `json:"created_at"`
	PaymentURL    string    `json:"payment_url,omitempty"`
}

type conflictResponse struct {
	Error  string                `json:"error"`
	Code   string                `json:"code"`
	Report domain.ConflictReport `json:"report"`
}

// HandleCreateBooking returns the handler for the authoritative booking
// path. On conflict it responds 409 with resolution suggestions from the
// detector; a checkout provider, when configured, attaches a payment URL
// to successful creations.
func HandleCreateBooking(svc BookingCreator, detector ConflictDetector, checkout payments.CheckoutProvider, currency string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "start_date must be YYYY-MM-DD")
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "end_date must be YYYY-MM-DD")
			return
		}

		result, err := svc.CreateReservation(r.Context(), app.CreateReservationInput{
			VehicleID: req.VehicleID,
			RenterID:  req.RenterID,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			writeCreateBookingError(w, r, err, detector, logger)
			return
		}

		resp := createBookingResponse{
			ID:            result.Reservation.ID,
			VehicleID:     result.Reservation.VehicleID,
			StartDate:     result.Reservation.StartDate.Format(dateLayout),
			EndDate:       result.Reservation.EndDate.Format(dateLayout),
			Status:        string(result.Reservation.Status),
			PaymentStatus: string(result.Reservation.PaymentStatus),
			TotalCents:    result.TotalCents,
			CreatedAt:     result.Reservation.CreatedAt,
		}

		if checkout != nil {
			url, _, err := checkout.CreateCheckoutSession(
				result.TotalCents,
				currency,
				"Car rental "+resp.StartDate+" to "+resp.EndDate,
				resp.ID,
			)
			if err != nil {
				// The reservation exists and holds its dates; payment can be
				// retried, so surface the booking anyway.
				logger.Error().Err(err).Str("reservation_id", resp.ID).Msg("checkout session failed")
			} else {
				resp.PaymentURL = url
			}
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func writeCreateBookingError(w http.ResponseWriter, r *http.Request, err error, detector ConflictDetector, logger zerolog.Logger) {
	if ce, ok := domain.AsConflictError(err); ok {
		report, derr := detector.DetectConflicts(r.Context(), app.DetectConflictsInput{
			VehicleID: ce.VehicleID,
			StartDate: ce.StartDate,
			EndDate:   ce.EndDate,
		})
		if derr != nil {
			logger.Error().Err(derr).Msg("conflict resolution lookup failed")
			report = domain.ConflictReport{
				HasConflicts:      true,
				Conflicts:         domain.Summarize(ce.Conflicts),
				ResolutionOptions: []domain.ResolutionOption{},
			}
		}
		writeJSON(w, http.StatusConflict, conflictResponse{
			Error:  ce.Error(),
			Code:   codeBookingConflict,
			Report: report,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, codeInvalidDateRange, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrRenterRequired):
		writeError(w, http.StatusBadRequest, codeRenterRequired, err.Error())
	case errors.Is(err, domain.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, codeVehicleNotFound, err.Error())
	case errors.Is(err, domain.ErrVehicleNotBookable):
		writeError(w, http.StatusConflict, codeVehicleNotBookable, err.Error())
	case errors.Is(err, domain.ErrRetryExhausted):
		// Not a booking conflict: the caller should simply try again.
		writeError(w, http.StatusServiceUnavailable, codeTryAgain, "temporarily unavailable, please try again")
	default:
		logger.Error().Err(err).Msg("create booking failed")
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
