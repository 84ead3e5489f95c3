package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/AdilAzhari/car-rental-api/internal/app"
	"github.com/AdilAzhari/car-rental-api/internal/domain"
)

// ConflictService is what the advisory endpoints need from the orchestrator.
type ConflictService interface {
	DetectConflicts(ctx context.Context, in app.DetectConflictsInput) (domain.ConflictReport, error)
	ValidateBookingUpdate(ctx context.Context, reservationID string, newStart, newEnd time.Time) (domain.ConflictReport, error)
}

type checkConflictsRequest struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// HandleCheckConflicts returns the advisory conflict-check handler.
func HandleCheckConflicts(svc ConflictService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkConflictsRequest
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

		report, err := svc.DetectConflicts(r.Context(), app.DetectConflictsInput{
			VehicleID: req.VehicleID,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			writeConflictReportError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

type validateUpdateRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// HandleValidateBookingUpdate checks whether an existing reservation can
// move to new dates; the reservation itself is excluded from the check.
func HandleValidateBookingUpdate(svc ConflictService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID := mux.Vars(r)["id"]

		var req validateUpdateRequest
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

		report, err := svc.ValidateBookingUpdate(r.Context(), reservationID, start, end)
		if err != nil {
			writeConflictReportError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func writeConflictReportError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	switch {
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, codeInvalidDateRange, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, codeVehicleNotFound, err.Error())
	case errors.Is(err, domain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, codeReservationNotFound, err.Error())
	default:
		logger.Error().Err(err).Msg("conflict check failed")
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
