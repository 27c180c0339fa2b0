package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/loftgolf/booking-platform/internal/booking"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

// WizardHandler exposes the booking wizard over JSON. Every route is
// scoped to the caller's platform session.
type WizardHandler struct {
	manager  *booking.Manager
	sessions *SessionRegistry
	logger   *logging.Logger
}

// NewWizardHandler creates the wizard handler.
func NewWizardHandler(manager *booking.Manager, sessions *SessionRegistry, logger *logging.Logger) *WizardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WizardHandler{manager: manager, sessions: sessions, logger: logger}
}

// orchestrator resolves the caller's booking session. An idle-expired
// booking session also invalidates the platform session.
func (h *WizardHandler) orchestrator(w http.ResponseWriter, r *http.Request) (*booking.Orchestrator, bool) {
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

func (h *WizardHandler) respondState(w http.ResponseWriter, o *booking.Orchestrator) {
	writeJSON(w, http.StatusOK, newStateView(o.Snapshot()))
}

// State returns the current wizard state.
// GET /api/booking/state
func (h *WizardHandler) State(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	h.respondState(w, o)
}

// ReloadCatalog re-fetches the vendor catalog.
// POST /api/booking/catalog
func (h *WizardHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	if err := o.LoadCatalog(r.Context()); err != nil {
		jsonError(w, "catalog load failed", http.StatusBadGateway)
		return
	}
	h.respondState(w, o)
}

// SelectLocation picks a venue.
// POST /api/booking/location
func (h *WizardHandler) SelectLocation(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		LocationID int `json:"location_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := o.SelectLocation(req.LocationID); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondState(w, o)
}

// SelectService picks a service.
// POST /api/booking/service
func (h *WizardHandler) SelectService(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		ServiceID int `json:"service_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := o.SelectService(req.ServiceID); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondState(w, o)
}

// SetGuests records the party size.
// POST /api/booking/guests
func (h *WizardHandler) SetGuests(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		GroupSize int `json:"group_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := o.SetGroupSize(req.GroupSize); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondState(w, o)
}

// SetDuration picks a session length.
// POST /api/booking/duration
func (h *WizardHandler) SetDuration(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := o.SetDuration(req.Minutes); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondState(w, o)
}

// SetDate picks a calendar day and refreshes availability for it.
// POST /api/booking/date
func (h *WizardHandler) SetDate(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if err := o.SetDate(r.Context(), day); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondState(w, o)
}

// SelectBay picks a simulator bay.
// POST /api/booking/bay
func (h *WizardHandler) SelectBay(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		BayID int `json:"bay_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := o.SelectBay(req.BayID); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respondState(w, o)
}

// RefreshSlots re-queries availability for the current selections.
// POST /api/booking/slots/refresh
func (h *WizardHandler) RefreshSlots(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	if err := o.RefreshAvailability(r.Context()); err != nil {
		jsonError(w, "availability lookup failed", http.StatusBadGateway)
		return
	}
	h.respondState(w, o)
}

// SelectSlot picks a start time from the current availability set, then
// refreshes the price preview.
// POST /api/booking/slot
func (h *WizardHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := o.SelectSlot(req.Index); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Pricing failures leave the estimate empty; the slot choice stands.
	_ = o.FetchPricing(r.Context())
	h.respondState(w, o)
}

// SetNotes attaches a free-text note.
// POST /api/booking/notes
func (h *WizardHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	o.SetNotes(req.Notes)
	h.respondState(w, o)
}

// Next advances the wizard one step.
// POST /api/booking/next
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	if _, moved := o.NextStep(); !moved {
		jsonError(w, "current step is incomplete", http.StatusConflict)
		return
	}
	h.respondState(w, o)
}

// Back moves the wizard one step back.
// POST /api/booking/back
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	o.PreviousStep()
	h.respondState(w, o)
}

// Confirm books the selected slot.
// POST /api/booking/confirm
func (h *WizardHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	if _, err := o.ConfirmBooking(r.Context()); err != nil {
		snapshot := o.Snapshot()
		if snapshot.BookingResult != nil {
			jsonError(w, "session already booked", http.StatusConflict)
			return
		}
		jsonError(w, "booking failed: "+snapshot.ErrorMessage, http.StatusBadGateway)
		return
	}
	h.respondState(w, o)
}

// Reset starts a new booking attempt, keeping the loaded catalog.
// POST /api/booking/reset
func (h *WizardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	o.Reset()
	h.respondState(w, o)
}
