package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/loftgolf/booking-platform/internal/uschedule"
)

type stubAppointmentAPI struct {
	appt *uschedule.Appointment
	err  error
}

func (s *stubAppointmentAPI) GetAppointment(context.Context, *uschedule.Session, int) (*uschedule.Appointment, error) {
	return s.appt, s.err
}

// doChiRequest routes through a chi mux so URL params resolve.
func doChiRequest(t *testing.T, register func(chi.Router), sess *AuthSession, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	register(r)
	req := httptest.NewRequest(method, target, strings.NewReader(""))
	if sess != nil {
		req = req.WithContext(context.WithValue(req.Context(), sessionCtxKey{}, sess))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAppointmentsListMarksCancellable(t *testing.T) {
	api := newStubAPI()
	in48h := uschedule.FormatWireTime(time.Now().Add(48 * time.Hour))
	in12h := uschedule.FormatWireTime(time.Now().Add(12 * time.Hour))
	api.appointments = []uschedule.Appointment{
		{ID: 1, StartTime: &in48h, StatusID: uschedule.StatusActive},
		{ID: 2, StartTime: &in12h, StatusID: uschedule.StatusActive},
	}
	manager, sessions, sess := testSession(t, api)
	h := NewAppointmentsHandler(manager, sessions, &stubAppointmentAPI{}, nil)

	rec := doRequest(t, h.List, sess, http.MethodGet, "/api/appointments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Appointments []appointmentView `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Appointments, 2)
	require.Equal(t, 2, resp.Appointments[0].ID)
	require.False(t, resp.Appointments[0].CanCancel)
	require.True(t, resp.Appointments[1].CanCancel)
	require.Equal(t, "Upcoming", resp.Appointments[1].Status)
}

func TestCancelRejectionIsConflict(t *testing.T) {
	api := newStubAPI()
	api.cancelErr = &uschedule.HTTPError{Status: http.StatusBadRequest, Body: "too close to start time"}
	manager, sessions, sess := testSession(t, api)
	h := NewAppointmentsHandler(manager, sessions, &stubAppointmentAPI{}, nil)

	rec := doChiRequest(t, func(r chi.Router) {
		r.Post("/api/appointments/{id}/cancel", h.Cancel)
	}, sess, http.MethodPost, "/api/appointments/42/cancel")

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Cannot cancel: too close to start time")
}

func TestCancelSuccessIsNoContent(t *testing.T) {
	manager, sessions, sess := testSession(t, newStubAPI())
	h := NewAppointmentsHandler(manager, sessions, &stubAppointmentAPI{}, nil)

	rec := doChiRequest(t, func(r chi.Router) {
		r.Post("/api/appointments/{id}/cancel", h.Cancel)
	}, sess, http.MethodPost, "/api/appointments/42/cancel")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetAppointmentInvalidID(t *testing.T) {
	manager, sessions, sess := testSession(t, newStubAPI())
	h := NewAppointmentsHandler(manager, sessions, &stubAppointmentAPI{}, nil)

	rec := doChiRequest(t, func(r chi.Router) {
		r.Get("/api/appointments/{id}", h.Get)
	}, sess, http.MethodGet, "/api/appointments/abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAppointmentNotFound(t *testing.T) {
	manager, sessions, sess := testSession(t, newStubAPI())
	h := NewAppointmentsHandler(manager, sessions, &stubAppointmentAPI{
		err: &uschedule.HTTPError{Status: http.StatusNotFound, Body: "no such appointment"},
	}, nil)

	rec := doChiRequest(t, func(r chi.Router) {
		r.Get("/api/appointments/{id}", h.Get)
	}, sess, http.MethodGet, "/api/appointments/42")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
