package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/loftgolf/booking-platform/internal/uschedule"
)

// MaxGroupSize is the largest party any bay can hold. Larger groups are
// terminally "cannot accommodate": no bay may be selected and the wizard
// cannot advance past the guests step.
const MaxGroupSize = 8

// smallGroupLimit is the party size every bay accommodates. Groups up to
// this size see the full active-bay catalog regardless of each bay's
// declared capacity; only the large bay serves bigger groups.
const smallGroupLimit = 4

// DurationOptions are the selectable session lengths in minutes.
var DurationOptions = []int{60, 120, 180, 240}

// DefaultDuration is used when the selected service declares no length.
const DefaultDuration = 60

// Session is the wizard's mutable state for one booking attempt. It is
// owned by a single Orchestrator and never shared across attempts.
type Session struct {
	ID   uuid.UUID
	Step Step

	// Catalog loaded from the vendor; ServiceTypes and ResourceUnits are
	// pre-filtered to active entries.
	Locations     []uschedule.Location
	Services      []uschedule.Service
	ServiceTypes  []uschedule.ServiceType
	ResourceUnits []uschedule.ResourceUnit

	// User selections.
	Location     *uschedule.Location
	Service      *uschedule.Service
	GroupSize    int
	Duration     int
	SelectedBay  *uschedule.ResourceUnit
	SelectedDate time.Time
	Notes        string

	// Derived from the vendor per the current selection tuple.
	AvailableSlots []uschedule.AvailabilitySlot
	SelectedSlot   *uschedule.AvailabilitySlot
	EstimatedPrice *float64

	// Terminal outcome; write-once per session.
	BookingResult *uschedule.AppointmentResult

	// Appointment projections, refreshed after booking/cancel. Upcoming is
	// active future appointments soonest first; Past is everything already
	// started, most recent first.
	UpcomingAppointments []uschedule.Appointment
	PastAppointments     []uschedule.Appointment

	// Last operation failure, surfaced to the UI. Cleared on the next
	// successful operation.
	ErrorMessage string
}

func newSession() Session {
	return Session{
		ID:           uuid.New(),
		Step:         StepSelectService,
		GroupSize:    1,
		Duration:     DefaultDuration,
		SelectedDate: time.Now(),
	}
}

// CannotAccommodate reports whether the party exceeds every bay.
func (s *Session) CannotAccommodate() bool {
	return s.GroupSize > MaxGroupSize
}

// EligibleBays returns the bays the current group size may book.
// Groups of 1..4 see every active bay (the physical rule: small bays
// always take small groups), 5..8 only bays whose capacity covers the
// group, and 9+ none.
func (s *Session) EligibleBays() []uschedule.ResourceUnit {
	switch {
	case s.GroupSize > MaxGroupSize:
		return nil
	case s.GroupSize > smallGroupLimit:
		eligible := make([]uschedule.ResourceUnit, 0, len(s.ResourceUnits))
		for _, unit := range s.ResourceUnits {
			if unit.Capacity != nil && *unit.Capacity >= s.GroupSize {
				eligible = append(eligible, unit)
			}
		}
		return eligible
	default:
		return s.ResourceUnits
	}
}

// CanProceedToGuests gates Service -> Guests: a location and service must
// be chosen (a sole location is auto-chosen at catalog load).
func (s *Session) CanProceedToGuests() bool {
	return s.Location != nil && s.Service != nil
}

// CanProceedToBay gates Guests -> Bay.
func (s *Session) CanProceedToBay() bool {
	return s.CanProceedToGuests() && s.GroupSize >= 1 && !s.CannotAccommodate()
}

// CanProceedToDateTime gates Bay -> DateTime: either no bay choice exists
// for this group or one has been made.
func (s *Session) CanProceedToDateTime() bool {
	if !s.CanProceedToBay() {
		return false
	}
	return len(s.EligibleBays()) == 0 || s.SelectedBay != nil
}

// CanConfirm gates DateTime -> Confirmation. A dangling slot object does
// not qualify when an upstream selection is unset.
func (s *Session) CanConfirm() bool {
	return s.CanProceedToDateTime() && s.SelectedSlot != nil
}

// canAdvanceFrom returns whether the forward transition out of the given
// step is permitted.
func (s *Session) canAdvanceFrom(step Step) bool {
	switch step {
	case StepSelectService:
		return s.CanProceedToGuests()
	case StepSelectGuests:
		return s.CanProceedToBay()
	case StepSelectBay:
		return s.CanProceedToDateTime()
	case StepSelectDateTime:
		return s.CanConfirm()
	default:
		return false
	}
}

// invalidateSlots drops the availability set and everything derived from
// it. Any mutation of {bay, date, duration, group size} funnels here so
// stale slots can never be booked.
func (s *Session) invalidateSlots() {
	s.AvailableSlots = nil
	s.SelectedSlot = nil
	s.EstimatedPrice = nil
}

// reconcileSelectedSlot clears the selected slot unless it is a member of
// the current availability set.
func (s *Session) reconcileSelectedSlot() {
	if s.SelectedSlot == nil {
		return
	}
	for _, slot := range s.AvailableSlots {
		if uschedule.SameSlot(*s.SelectedSlot, slot) {
			return
		}
	}
	s.SelectedSlot = nil
	s.EstimatedPrice = nil
}
