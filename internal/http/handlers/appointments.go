package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loftgolf/booking-platform/internal/booking"
	"github.com/loftgolf/booking-platform/internal/uschedule"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

// appointmentAPI is the appointment-detail slice of the USchedule client.
type appointmentAPI interface {
	GetAppointment(ctx context.Context, sess *uschedule.Session, id int) (*uschedule.Appointment, error)
}

// AppointmentsHandler serves the upcoming-appointments projection and
// cancellation.
type AppointmentsHandler struct {
	manager  *booking.Manager
	sessions *SessionRegistry
	api      appointmentAPI
	logger   *logging.Logger
}

// NewAppointmentsHandler creates the appointments handler.
func NewAppointmentsHandler(manager *booking.Manager, sessions *SessionRegistry, api appointmentAPI, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{manager: manager, sessions: sessions, api: api, logger: logger}
}

func (h *AppointmentsHandler) orchestrator(w http.ResponseWriter, r *http.Request) (*booking.Orchestrator, bool) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return nil, false
	}
	o, err := h.manager.Get(sess.ID)
	if err != nil {
		h.sessions.Delete(sess.ID)
		jsonError(w, "session expired, sign in again", http.StatusUnauthorized)
		return nil, false
	}
	return o, true
}

// List returns the caller's appointments: upcoming (soonest first) by
// default, or history with ?scope=past (most recent first).
// GET /api/appointments
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	if err := o.LoadAppointments(r.Context()); err != nil {
		jsonError(w, "appointments lookup failed", http.StatusBadGateway)
		return
	}
	snapshot := o.Snapshot()
	selected := snapshot.UpcomingAppointments
	if r.URL.Query().Get("scope") == "past" {
		selected = snapshot.PastAppointments
	}
	now := time.Now()
	views := make([]appointmentView, 0, len(selected))
	for _, appt := range selected {
		views = append(views, newAppointmentView(appt, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": views})
}

// Get returns one appointment by id.
// GET /api/appointments/{id}
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		jsonError(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	appt, err := h.api.GetAppointment(r.Context(), sess.Vendor, id)
	if err != nil {
		if he, ok := uschedule.AsHTTPError(err); ok && he.Status == http.StatusNotFound {
			jsonError(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("appointment lookup failed", "appointment_id", id, "error", err)
		jsonError(w, "appointment lookup failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, newAppointmentView(*appt, time.Now()))
}

// Cancel cancels a reservation. Vendor business-rule rejections come back
// as 409 with the vendor's reason.
// POST /api/appointments/{id}/cancel
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		jsonError(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	if err := o.CancelAppointment(r.Context(), id); err != nil {
		if msg := o.Snapshot().ErrorMessage; strings.HasPrefix(msg, "Cannot cancel:") {
			jsonError(w, msg, http.StatusConflict)
			return
		}
		jsonError(w, "cancellation failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
