package booking

import (
	"testing"

	"github.com/loftgolf/booking-platform/internal/uschedule"
)

func intPtr(v int) *int { return &v }

func testUnits() []uschedule.ResourceUnit {
	return []uschedule.ResourceUnit{
		{ID: 1, Description: "Bay 1", Capacity: intPtr(4), StatusID: uschedule.StatusActive},
		{ID: 2, Description: "Bay 2", Capacity: intPtr(4), StatusID: uschedule.StatusActive},
		{ID: 3, Description: "The Loft", Capacity: intPtr(8), StatusID: uschedule.StatusActive},
		{ID: 4, Description: "Bay 4", Capacity: nil, StatusID: uschedule.StatusActive},
	}
}

func TestEligibleBaysSmallGroupSeesAllBays(t *testing.T) {
	s := Session{GroupSize: 2, ResourceUnits: testUnits()}
	if got := len(s.EligibleBays()); got != 4 {
		t.Fatalf("expected every bay for a pair, got %d", got)
	}
	s.GroupSize = 4
	if got := len(s.EligibleBays()); got != 4 {
		t.Fatalf("expected every bay at the small-group limit, got %d", got)
	}
}

func TestEligibleBaysLargeGroupFiltersByCapacity(t *testing.T) {
	s := Session{GroupSize: 6, ResourceUnits: testUnits()}
	eligible := s.EligibleBays()
	if len(eligible) != 1 || eligible[0].ID != 3 {
		t.Fatalf("expected only the large bay for 6 guests, got %+v", eligible)
	}
	s.GroupSize = 8
	eligible = s.EligibleBays()
	if len(eligible) != 1 || eligible[0].ID != 3 {
		t.Fatalf("expected only the large bay for 8 guests, got %+v", eligible)
	}
}

func TestEligibleBaysUnknownCapacityExcludedForLargeGroups(t *testing.T) {
	s := Session{GroupSize: 5, ResourceUnits: testUnits()}
	for _, unit := range s.EligibleBays() {
		if unit.Capacity == nil {
			t.Fatalf("bay with unknown capacity offered to a group of 5: %+v", unit)
		}
	}
}

func TestOversizeGroupCannotBeAccommodated(t *testing.T) {
	s := Session{GroupSize: 9, ResourceUnits: testUnits()}
	if !s.CannotAccommodate() {
		t.Fatal("group of 9 must be terminal")
	}
	if got := s.EligibleBays(); len(got) != 0 {
		t.Fatalf("expected no eligible bays, got %+v", got)
	}
	if s.CanProceedToBay() {
		t.Fatal("oversize group must not pass the guests guard")
	}
}

func TestGuardsRequireUpstreamSelections(t *testing.T) {
	s := newSession()
	if s.CanProceedToGuests() {
		t.Fatal("guests guard must fail without location+service")
	}

	s.Location = &uschedule.Location{ID: 1}
	s.Service = &uschedule.Service{ID: 5}
	if !s.CanProceedToGuests() {
		t.Fatal("guests guard should pass with location and service")
	}

	// A dangling slot does not make the session confirmable when an
	// upstream selection is missing.
	bare := newSession()
	bare.SelectedSlot = &uschedule.AvailabilitySlot{}
	if bare.CanConfirm() {
		t.Fatal("confirm guard must not pass on a dangling slot")
	}
}

func TestDateTimeGuardWithoutEligibleBays(t *testing.T) {
	s := newSession()
	s.Location = &uschedule.Location{ID: 1}
	s.Service = &uschedule.Service{ID: 5}
	s.GroupSize = 2
	// No resource units loaded: the bay step has nothing to choose, so it
	// must not block progress.
	if !s.CanProceedToDateTime() {
		t.Fatal("empty eligible set should not block the datetime step")
	}

	s.ResourceUnits = testUnits()
	if s.CanProceedToDateTime() {
		t.Fatal("with eligible bays a selection is required")
	}
	s.SelectedBay = &s.ResourceUnits[0]
	if !s.CanProceedToDateTime() {
		t.Fatal("selected bay should unlock the datetime step")
	}
}

func TestInvalidateSlotsClearsDerivedState(t *testing.T) {
	price := 45.0
	start := "2026-09-01T09:00:00"
	s := Session{
		AvailableSlots: []uschedule.AvailabilitySlot{{StartTime: &start}},
		SelectedSlot:   &uschedule.AvailabilitySlot{StartTime: &start},
		EstimatedPrice: &price,
	}
	s.invalidateSlots()
	if s.AvailableSlots != nil || s.SelectedSlot != nil || s.EstimatedPrice != nil {
		t.Fatalf("derived state not cleared: %+v", s)
	}
}

func TestReconcileSelectedSlot(t *testing.T) {
	nine := "2026-09-01T09:00:00"
	ten := "2026-09-01T10:00:00"
	s := Session{
		AvailableSlots: []uschedule.AvailabilitySlot{{StartTime: &nine}, {StartTime: &ten}},
		SelectedSlot:   &uschedule.AvailabilitySlot{StartTime: &nine},
	}
	s.reconcileSelectedSlot()
	if s.SelectedSlot == nil {
		t.Fatal("slot still available, must be kept")
	}

	s.AvailableSlots = []uschedule.AvailabilitySlot{{StartTime: &ten}}
	s.reconcileSelectedSlot()
	if s.SelectedSlot != nil {
		t.Fatal("slot no longer available, must be cleared")
	}
}
