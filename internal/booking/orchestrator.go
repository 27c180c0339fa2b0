package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/loftgolf/booking-platform/internal/observability/metrics"
	"github.com/loftgolf/booking-platform/internal/uschedule"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

var bookingTracer = otel.Tracer("loftgolf.internal.booking")

// SchedulingAPI is the slice of the USchedule client the orchestrator
// depends on. Tests substitute a fake.
type SchedulingAPI interface {
	ListLocations(ctx context.Context, sess *uschedule.Session) ([]uschedule.Location, error)
	ListServices(ctx context.Context, sess *uschedule.Session) ([]uschedule.Service, error)
	ListServiceTypes(ctx context.Context, sess *uschedule.Session) ([]uschedule.ServiceType, error)
	ListResourceUnits(ctx context.Context, sess *uschedule.Session) ([]uschedule.ResourceUnit, error)
	FindAvailableResources(ctx context.Context, sess *uschedule.Session, locationID, serviceID int) (*uschedule.AvailableEmployeeResources, error)
	QueryAvailability(ctx context.Context, sess *uschedule.Session, req uschedule.AvailabilityRequest) ([]uschedule.AvailabilitySlot, error)
	GetPricing(ctx context.Context, sess *uschedule.Session, draft uschedule.BookingDraft) (*uschedule.AppointmentResult, error)
	CreateBooking(ctx context.Context, sess *uschedule.Session, draft uschedule.BookingDraft) (*uschedule.AppointmentResult, error)
	CancelBooking(ctx context.Context, sess *uschedule.Session, reservationID int) error
	ListAppointments(ctx context.Context, sess *uschedule.Session) ([]uschedule.Appointment, error)
}

// Orchestrator drives one booking attempt: it owns the wizard Session,
// enforces the step guards, and sequences the vendor calls. Methods are
// safe for concurrent use; the vendor is never called while the state
// lock is held.
type Orchestrator struct {
	mu      sync.Mutex
	state   Session
	api     SchedulingAPI
	vendor  *uschedule.Session
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	// availabilityGen implements last-request-wins for RefreshAvailability:
	// a response is applied only if no newer request has been issued since.
	availabilityGen uint64
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithBookingMetrics attaches funnel metrics.
func WithBookingMetrics(m *metrics.BookingMetrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator creates an orchestrator for one booking attempt against
// an authenticated vendor session.
func NewOrchestrator(api SchedulingAPI, vendor *uschedule.Session, logger *logging.Logger, opts ...OrchestratorOption) *Orchestrator {
	if api == nil {
		panic("booking: scheduling API required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := &Orchestrator{
		state:  newSession(),
		api:    api,
		vendor: vendor,
		logger: logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns a copy of the current wizard state for rendering.
// Slices in the copy must be treated as read-only.
func (o *Orchestrator) Snapshot() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LoadCatalog fetches locations, services, service types and resource
// units. The four reads are independent and issued in parallel. Service
// types and resource units are filtered to active status, and a sole
// location is auto-selected.
func (o *Orchestrator) LoadCatalog(ctx context.Context) error {
	var (
		locations []uschedule.Location
		services  []uschedule.Service
		types     []uschedule.ServiceType
		units     []uschedule.ResourceUnit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locations, err = o.api.ListLocations(gctx, o.vendor)
		return err
	})
	g.Go(func() error {
		var err error
		services, err = o.api.ListServices(gctx, o.vendor)
		return err
	})
	g.Go(func() error {
		var err error
		types, err = o.api.ListServiceTypes(gctx, o.vendor)
		return err
	})
	g.Go(func() error {
		var err error
		units, err = o.api.ListResourceUnits(gctx, o.vendor)
		return err
	})
	if err := g.Wait(); err != nil {
		return o.fail(fmt.Errorf("load catalog: %w", err))
	}

	activeTypes := types[:0]
	for _, st := range types {
		if st.StatusID == uschedule.StatusActive {
			activeTypes = append(activeTypes, st)
		}
	}
	activeUnits := units[:0]
	for _, u := range units {
		if u.StatusID == uschedule.StatusActive {
			activeUnits = append(activeUnits, u)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Locations = locations
	o.state.Services = services
	o.state.ServiceTypes = activeTypes
	o.state.ResourceUnits = activeUnits
	if len(locations) == 1 {
		loc := locations[0]
		o.state.Location = &loc
	}
	o.state.ErrorMessage = ""
	return nil
}

// LoadAppointments refreshes both appointment projections: upcoming is
// active appointments starting in the future, soonest first; past is
// everything already started (any status), most recent first.
func (o *Orchestrator) LoadAppointments(ctx context.Context) error {
	appointments, err := o.api.ListAppointments(ctx, o.vendor)
	if err != nil {
		return o.fail(fmt.Errorf("load appointments: %w", err))
	}

	now := time.Now()
	upcoming := make([]uschedule.Appointment, 0, len(appointments))
	past := make([]uschedule.Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if appt.StartTime == nil {
			continue
		}
		start, ok := uschedule.ParseWireDate(*appt.StartTime)
		if !ok {
			continue
		}
		switch {
		case start.After(now):
			if appt.StatusID == uschedule.StatusActive {
				upcoming = append(upcoming, appt)
			}
		default:
			past = append(past, appt)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		a, _ := uschedule.ParseWireDate(*upcoming[i].StartTime)
		b, _ := uschedule.ParseWireDate(*upcoming[j].StartTime)
		return a.Before(b)
	})
	sort.SliceStable(past, func(i, j int) bool {
		a, _ := uschedule.ParseWireDate(*past[i].StartTime)
		b, _ := uschedule.ParseWireDate(*past[j].StartTime)
		return a.After(b)
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.UpcomingAppointments = upcoming
	o.state.PastAppointments = past
	return nil
}

// SelectLocation picks a location from the loaded catalog.
func (o *Orchestrator) SelectLocation(locationID int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, loc := range o.state.Locations {
		if loc.ID == locationID {
			l := loc
			o.state.Location = &l
			o.state.invalidateSlots()
			return nil
		}
	}
	return fmt.Errorf("booking: unknown location %d", locationID)
}

// SelectService picks a service; its declared length, when present,
// becomes the session duration.
func (o *Orchestrator) SelectService(serviceID int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, svc := range o.state.Services {
		if svc.ID == serviceID {
			s := svc
			o.state.Service = &s
			if s.ServiceLength != nil && *s.ServiceLength > 0 {
				o.state.Duration = *s.ServiceLength
			}
			o.state.invalidateSlots()
			return nil
		}
	}
	return fmt.Errorf("booking: unknown service %d", serviceID)
}

// SetGroupSize records the party size. Bay eligibility depends on it, so
// the selected bay and the availability set are cleared even when the
// value is unchanged.
func (o *Orchestrator) SetGroupSize(n int) error {
	if n < 1 {
		return fmt.Errorf("booking: group size must be at least 1, got %d", n)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.GroupSize = n
	o.state.SelectedBay = nil
	o.state.invalidateSlots()
	return nil
}

// SetDuration picks one of the fixed duration options.
func (o *Orchestrator) SetDuration(minutes int) error {
	valid := false
	for _, opt := range DurationOptions {
		if opt == minutes {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("booking: duration %d is not offered", minutes)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Duration = minutes
	o.state.invalidateSlots()
	return nil
}

// SetDate records the calendar day and refreshes availability for it.
// Past dates are rejected.
func (o *Orchestrator) SetDate(ctx context.Context, date time.Time) error {
	today := time.Now()
	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if day.Before(startOfToday) {
		return fmt.Errorf("booking: date %s is in the past", day.Format("2006-01-02"))
	}

	o.mu.Lock()
	o.state.SelectedDate = day
	o.state.invalidateSlots()
	o.mu.Unlock()

	return o.RefreshAvailability(ctx)
}

// SelectBay picks a bay. The bay must be a member of the current eligible
// set; slots queried for another bay are dropped.
func (o *Orchestrator) SelectBay(unitID int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.CannotAccommodate() {
		return fmt.Errorf("booking: group of %d cannot be accommodated", o.state.GroupSize)
	}
	for _, unit := range o.state.EligibleBays() {
		if unit.ID == unitID {
			u := unit
			o.state.SelectedBay = &u
			o.state.invalidateSlots()
			return nil
		}
	}
	return fmt.Errorf("booking: bay %d is not eligible for a group of %d", unitID, o.state.GroupSize)
}

// SelectSlot picks the idx-th entry of the current availability set.
func (o *Orchestrator) SelectSlot(idx int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if idx < 0 || idx >= len(o.state.AvailableSlots) {
		return fmt.Errorf("booking: slot index %d out of range (%d slots)", idx, len(o.state.AvailableSlots))
	}
	slot := o.state.AvailableSlots[idx]
	o.state.SelectedSlot = &slot
	o.state.EstimatedPrice = nil
	return nil
}

// SetNotes records the free-text note attached to the booking.
func (o *Orchestrator) SetNotes(notes string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Notes = notes
}

// RefreshAvailability resolves an employee/resource pair for the current
// location+service and queries slots for the selection tuple. When
// several refreshes race (the user flips dates quickly), only the newest
// request's response is applied; superseded responses are discarded. The
// selected slot is kept only if it is still a member of the new set.
func (o *Orchestrator) RefreshAvailability(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Location == nil {
		o.mu.Unlock()
		return fmt.Errorf("booking: no location selected")
	}
	if o.state.Service == nil {
		o.mu.Unlock()
		return fmt.Errorf("booking: no service selected")
	}
	o.availabilityGen++
	gen := o.availabilityGen
	locationID := o.state.Location.ID
	serviceID := o.state.Service.ID
	groupSize := o.state.GroupSize
	duration := o.state.Duration
	date := o.state.SelectedDate
	var unitID *int
	if o.state.SelectedBay != nil {
		id := o.state.SelectedBay.ID
		unitID = &id
	}
	o.mu.Unlock()

	resources, err := o.api.FindAvailableResources(ctx, o.vendor, locationID, serviceID)
	if err != nil {
		return o.fail(fmt.Errorf("discover resources: %w", err))
	}

	req := uschedule.AvailabilityRequest{
		LocationID:     locationID,
		EmployeeID:     resources.FirstEmployeeID(),
		ServiceID:      &serviceID,
		ResourceID:     resources.FirstResourceID(),
		ResourceUnitID: unitID,
		GroupSize:      &groupSize,
		StartDate:      uschedule.FormatWireDate(date),
		ServiceLength:  &duration,
		NextAvailable:  false,
	}
	slots, err := o.api.QueryAvailability(ctx, o.vendor, req)
	if err != nil {
		return o.fail(fmt.Errorf("query availability: %w", err))
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.availabilityGen {
		o.logger.Debug("discarding superseded availability response",
			"session_id", o.state.ID, "generation", gen)
		return nil
	}
	o.state.AvailableSlots = slots
	o.state.reconcileSelectedSlot()
	o.state.ErrorMessage = ""
	return nil
}

// FetchPricing previews the price for the selected slot. A failure clears
// the estimate and is otherwise non-fatal: the confirmation screen shows
// no price rather than blocking the flow.
func (o *Orchestrator) FetchPricing(ctx context.Context) error {
	draft, err := o.buildDraft(false)
	if err != nil {
		return err
	}

	result, err := o.api.GetPricing(ctx, o.vendor, draft)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.logger.Warn("pricing fetch failed", "session_id", o.state.ID, "error", err)
		o.state.EstimatedPrice = nil
		return nil
	}
	o.state.EstimatedPrice = result.Price
	return nil
}

// ConfirmBooking books the selected slot with pay-at-location payment.
// On success the result is recorded (write-once) and the appointments
// projection is refreshed. On failure the session is left unchanged so
// the caller may retry.
func (o *Orchestrator) ConfirmBooking(ctx context.Context) (*uschedule.AppointmentResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.confirm")
	defer span.End()

	o.mu.Lock()
	if o.state.BookingResult != nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("booking: session already booked; start a new session")
	}
	if !o.state.CanConfirm() {
		o.mu.Unlock()
		return nil, o.fail(fmt.Errorf("booking: selections incomplete"))
	}
	sessionID := o.state.ID
	o.mu.Unlock()

	span.SetAttributes(attribute.String("loftgolf.session_id", sessionID.String()))

	draft, err := o.buildDraft(true)
	if err != nil {
		return nil, err
	}

	result, err := o.api.CreateBooking(ctx, o.vendor, draft)
	if err != nil {
		span.RecordError(err)
		o.metrics.ObserveConfirm("error")
		return nil, o.fail(fmt.Errorf("create booking: %w", err))
	}

	o.mu.Lock()
	o.state.BookingResult = result
	o.state.ErrorMessage = ""
	o.mu.Unlock()

	o.metrics.ObserveConfirm("success")
	o.logger.Info("booking confirmed",
		"session_id", sessionID,
		"reservation_id", result.ID,
	)

	// Best-effort refresh; the reservation stands regardless.
	if err := o.LoadAppointments(ctx); err != nil {
		o.logger.Warn("appointments refresh after booking failed", "error", err)
	}
	return result, nil
}

// CancelAppointment cancels a reservation. The vendor encodes
// business-rule rejections as HTTP 400 with a reason body, surfaced
// verbatim; on success the appointments projection is refreshed.
func (o *Orchestrator) CancelAppointment(ctx context.Context, reservationID int) error {
	if err := o.api.CancelBooking(ctx, o.vendor, reservationID); err != nil {
		o.metrics.ObserveCancel("rejected")
		if he, ok := uschedule.AsHTTPError(err); ok && he.Status == 400 {
			return o.failMessage(fmt.Sprintf("Cannot cancel: %s", he.Body), err)
		}
		return o.fail(fmt.Errorf("cancel appointment %d: %w", reservationID, err))
	}
	o.metrics.ObserveCancel("success")
	return o.LoadAppointments(ctx)
}

// CanCancel reports whether an appointment is still cancellable: active
// status and more than 24 hours before its start. The vendor re-checks
// on cancellation; this guard keeps the UI honest.
func CanCancel(appt uschedule.Appointment, now time.Time) bool {
	if appt.StatusID != uschedule.StatusActive || appt.StartTime == nil {
		return false
	}
	start, ok := uschedule.ParseWireDate(*appt.StartTime)
	if !ok {
		return false
	}
	return start.Sub(now) > 24*time.Hour
}

// NextStep advances the wizard by one step when the current step's guard
// passes. It returns the resulting step and whether a move happened.
func (o *Orchestrator) NextStep() (Step, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Step >= lastStep {
		return o.state.Step, false
	}
	if !o.state.canAdvanceFrom(o.state.Step) {
		return o.state.Step, false
	}
	o.state.Step++
	return o.state.Step, true
}

// PreviousStep moves the wizard back by one step. Always permitted except
// from the first step.
func (o *Orchestrator) PreviousStep() (Step, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Step <= firstStep {
		return o.state.Step, false
	}
	o.state.Step--
	return o.state.Step, true
}

// Reset starts a logically new booking attempt with a fresh session id.
// The loaded catalog and appointments are kept; selections and any
// terminal result are discarded.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	fresh := newSession()
	fresh.Locations = o.state.Locations
	fresh.Services = o.state.Services
	fresh.ServiceTypes = o.state.ServiceTypes
	fresh.ResourceUnits = o.state.ResourceUnits
	fresh.UpcomingAppointments = o.state.UpcomingAppointments
	fresh.PastAppointments = o.state.PastAppointments
	if len(fresh.Locations) == 1 {
		loc := fresh.Locations[0]
		fresh.Location = &loc
	}
	o.state = fresh
}

// buildDraft assembles the shared getpricing/bookit payload from the
// current selections.
func (o *Orchestrator) buildDraft(includeNotes bool) (uschedule.BookingDraft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Location == nil || o.state.Service == nil {
		return uschedule.BookingDraft{}, fmt.Errorf("booking: location and service required")
	}
	if o.state.SelectedSlot == nil || o.state.SelectedSlot.StartTime == nil {
		return uschedule.BookingDraft{}, fmt.Errorf("booking: no time slot selected")
	}

	serviceID := o.state.Service.ID
	groupSize := o.state.GroupSize
	duration := o.state.Duration
	draft := uschedule.BookingDraft{
		LocationID:    o.state.Location.ID,
		ServiceID:     &serviceID,
		GroupSize:     &groupSize,
		StartTime:     *o.state.SelectedSlot.StartTime,
		ServiceLength: &duration,
		PaymentType:   uschedule.PaymentTypePayAtLocation,
	}
	if o.state.SelectedBay != nil {
		id := o.state.SelectedBay.ID
		draft.ResourceUnitID = &id
	}
	if includeNotes && o.state.Notes != "" {
		notes := o.state.Notes
		draft.Notes = &notes
	}
	return draft, nil
}

// fail records err as the session's user-facing error and returns it.
func (o *Orchestrator) fail(err error) error {
	return o.failMessage(err.Error(), err)
}

func (o *Orchestrator) failMessage(msg string, err error) error {
	o.mu.Lock()
	o.state.ErrorMessage = msg
	o.mu.Unlock()
	o.logger.Error("booking operation failed", "error", err)
	return err
}
