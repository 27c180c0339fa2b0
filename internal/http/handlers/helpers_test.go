package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loftgolf/booking-platform/internal/booking"
	"github.com/loftgolf/booking-platform/internal/uschedule"
)

// stubAPI is a minimal SchedulingAPI for handler tests.
type stubAPI struct {
	locations    []uschedule.Location
	services     []uschedule.Service
	units        []uschedule.ResourceUnit
	slots        []uschedule.AvailabilitySlot
	appointments []uschedule.Appointment
	cancelErr    error
}

func (s *stubAPI) ListLocations(context.Context, *uschedule.Session) ([]uschedule.Location, error) {
	return s.locations, nil
}

func (s *stubAPI) ListServices(context.Context, *uschedule.Session) ([]uschedule.Service, error) {
	return s.services, nil
}

func (s *stubAPI) ListServiceTypes(context.Context, *uschedule.Session) ([]uschedule.ServiceType, error) {
	return nil, nil
}

func (s *stubAPI) ListResourceUnits(context.Context, *uschedule.Session) ([]uschedule.ResourceUnit, error) {
	return s.units, nil
}

func (s *stubAPI) FindAvailableResources(context.Context, *uschedule.Session, int, int) (*uschedule.AvailableEmployeeResources, error) {
	return &uschedule.AvailableEmployeeResources{}, nil
}

func (s *stubAPI) QueryAvailability(context.Context, *uschedule.Session, uschedule.AvailabilityRequest) ([]uschedule.AvailabilitySlot, error) {
	return s.slots, nil
}

func (s *stubAPI) GetPricing(context.Context, *uschedule.Session, uschedule.BookingDraft) (*uschedule.AppointmentResult, error) {
	price := 60.0
	return &uschedule.AppointmentResult{Price: &price}, nil
}

func (s *stubAPI) CreateBooking(_ context.Context, _ *uschedule.Session, draft uschedule.BookingDraft) (*uschedule.AppointmentResult, error) {
	return &uschedule.AppointmentResult{ID: 555, StartTime: &draft.StartTime}, nil
}

func (s *stubAPI) CancelBooking(context.Context, *uschedule.Session, int) error {
	return s.cancelErr
}

func (s *stubAPI) ListAppointments(context.Context, *uschedule.Session) ([]uschedule.Appointment, error) {
	return s.appointments, nil
}

func newStubAPI() *stubAPI {
	capacity := 8
	return &stubAPI{
		locations: []uschedule.Location{{ID: 10, Description: "Loft Golf Studios"}},
		services:  []uschedule.Service{{ID: 20, Description: "Sim Rental"}},
		units:     []uschedule.ResourceUnit{{ID: 1, Description: "Bay 1", Capacity: &capacity, StatusID: uschedule.StatusActive}},
	}
}

// testSession wires a manager-backed platform session for handler tests.
func testSession(t *testing.T, api booking.SchedulingAPI) (*booking.Manager, *SessionRegistry, *AuthSession) {
	t.Helper()
	manager := booking.NewManager(api, nil, nil, 0)
	id, o := manager.Create(&uschedule.Session{Token: "tok"})
	require.NoError(t, o.LoadCatalog(context.Background()))

	sessions := NewSessionRegistry()
	sess := &AuthSession{
		ID:     id,
		Vendor: &uschedule.Session{Token: "tok"},
		User:   &uschedule.UserDetails{UserID: 7, Username: "jdoe", IsCustomer: true},
	}
	sessions.Add(sess)
	return manager, sessions, sess
}

func doRequest(t *testing.T, h http.HandlerFunc, sess *AuthSession, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if sess != nil {
		req = req.WithContext(context.WithValue(req.Context(), sessionCtxKey{}, sess))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}
