package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidDate         = "invalid_date"
	codeInvalidDateRange    = "invalid_date_range"
	codeInvalidID           = "invalid_id"
	codeRenterRequired      = "renter_required"
	codeVehicleNotFound     = "vehicle_not_found"
	codeReservationNotFound = "reservation_not_found"
	codeVehicleNotBookable  = "vehicle_not_bookable"
	codeBookingConflict     = "booking_conflict"
	codeTryAgain            = "try_again"
	codeRateLimited         = "rate_limited"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
