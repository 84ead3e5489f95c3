package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdilAzhari/car-rental-api/internal/app"
	"github.com/AdilAzhari/car-rental-api/internal/domain"
)

type fakeConflictService struct {
	report domain.ConflictReport
	err    error

	gotDetect        app.DetectConflictsInput
	gotReservationID string
	gotStart, gotEnd time.Time
}

func (f *fakeConflictService) DetectConflicts(_ context.Context, in app.DetectConflictsInput) (domain.ConflictReport, error) {
	f.gotDetect = in
	return f.report, f.err
}

func (f *fakeConflictService) ValidateBookingUpdate(_ context.Context, reservationID string, newStart, newEnd time.Time) (domain.ConflictReport, error) {
	f.gotReservationID = reservationID
	f.gotStart, f.gotEnd = newStart, newEnd
	return f.report, f.err
}

func TestHandleCheckConflicts(t *testing.T) {
	t.Parallel()

	svc := &fakeConflictService{report: domain.ConflictReport{
		HasConflicts: true,
		Conflicts:    []domain.ConflictSummary{{ReservationID: "res-1"}},
		ResolutionOptions: []domain.ResolutionOption{
			{Type: domain.ResolutionAlternativeDates, Dates: []domain.DateSuggestion{{DurationDays: 2}}},
			{Type: domain.ResolutionWaitlist},
		},
	}}
	handler := HandleCheckConflicts(svc, zerolog.Nop())

	rr := postJSON(t, handler, "/api/conflicts/check",
		`{"vehicle_id":"veh-1","start_date":"2024-06-10","end_date":"2024-06-12"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "veh-1", svc.gotDetect.VehicleID)
	assert.Empty(t, svc.gotDetect.ExcludeReservationID)

	var report domain.ConflictReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.True(t, report.HasConflicts)
	require.Len(t, report.ResolutionOptions, 2)
	assert.Equal(t, domain.ResolutionAlternativeDates, report.ResolutionOptions[0].Type)
}

func TestHandleCheckConflicts_NoConflicts(t *testing.T) {
	t.Parallel()

	svc := &fakeConflictService{report: domain.ConflictReport{
		Conflicts:         []domain.ConflictSummary{},
		ResolutionOptions: []domain.ResolutionOption{},
	}}
	handler := HandleCheckConflicts(svc, zerolog.Nop())

	rr := postJSON(t, handler, "/api/conflicts/check",
		`{"vehicle_id":"veh-1","start_date":"2024-06-10","end_date":"2024-06-12"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"has_conflicts":false,"conflicts":[],"resolution_options":[]}`, rr.Body.String())
}

func TestHandleCheckConflicts_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"vehicle not found", domain.ErrVehicleNotFound, http.StatusNotFound, codeVehicleNotFound},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
		{"invalid range", domain.ErrInvalidDateRange, http.StatusBadRequest, codeInvalidDateRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := HandleCheckConflicts(&fakeConflictService{err: tc.err}, zerolog.Nop())
			rr := postJSON(t, handler, "/api/conflicts/check",
				`{"vehicle_id":"veh-1","start_date":"2024-06-10","end_date":"2024-06-12"}`)

			assert.Equal(t, tc.wantStatus, rr.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Code)
		})
	}
}

func TestHandleValidateBookingUpdate(t *testing.T) {
	t.Parallel()

	svc := &fakeConflictService{report: domain.ConflictReport{
		Conflicts:         []domain.ConflictSummary{},
		ResolutionOptions: []domain.ResolutionOption{},
	}}

	router := mux.NewRouter()
	router.Handle("/api/bookings/{id}/validate", HandleValidateBookingUpdate(svc, zerolog.Nop())).Methods(http.MethodPost)

	rr := postJSON(t, router, "/api/bookings/res-42/validate",
		`{"start_date":"2024-06-15","end_date":"2024-06-17"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "res-42", svc.gotReservationID)
	assert.True(t, svc.gotStart.Equal(day(2024, 6, 15)))
	assert.True(t, svc.gotEnd.Equal(day(2024, 6, 17)))
}

func TestHandleValidateBookingUpdate_ReservationNotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeConflictService{err: domain.ErrReservationNotFound}
	router := mux.NewRouter()
	router.Handle("/api/bookings/{id}/validate", HandleValidateBookingUpdate(svc, zerolog.Nop())).Methods(http.MethodPost)

	rr := postJSON(t, router, "/api/bookings/missing/validate",
		`{"start_date":"2024-06-15","end_date":"2024-06-17"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, codeReservationNotFound, resp.Code)
}

func TestHandleValidateBookingUpdate_BadDates(t *testing.T) {
	t.Parallel()

	router := mux.NewRouter()
	router.Handle("/api/bookings/{id}/validate", HandleValidateBookingUpdate(&fakeConflictService{}, zerolog.Nop())).Methods(http.MethodPost)

	rr := postJSON(t, router, "/api/bookings/res-1/validate",
		`{"start_date":"soon","end_date":"2024-06-17"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
