package handlers

import (
	"time"

	"github.com/loftgolf/booking-platform/internal/booking"
	"github.com/loftgolf/booking-platform/internal/uschedule"
)

// stateView is the wizard state as rendered to clients. AttemptID
// identifies the current booking attempt; Reset mints a new one while
// the platform session id is unchanged.
type stateView struct {
	AttemptID string `json:"attempt_id"`
	Step      string `json:"step"`
	StepTitle string `json:"step_title"`
	CanGoNext bool   `json:"can_go_next"`
	CanGoBack bool   `json:"can_go_back"`

	Location *locationView `json:"location,omitempty"`
	Services []serviceView `json:"services"`

	GroupSize          int    `json:"group_size"`
	CannotAccommodate  bool   `json:"cannot_accommodate"`
	Duration           int    `json:"duration_minutes"`
	DurationDisplay    string `json:"duration_display"`
	DurationOptions    []int  `json:"duration_options"`
	SelectedDate       string `json:"selected_date"`
	Notes              string `json:"notes,omitempty"`

	EligibleBays []bayView  `json:"eligible_bays"`
	SelectedBay  *bayView   `json:"selected_bay,omitempty"`
	Slots        []slotView `json:"available_slots"`
	SelectedSlot *slotView  `json:"selected_slot,omitempty"`

	EstimatedPrice *float64 `json:"estimated_price,omitempty"`
	PriceDisplay   string   `json:"price_display"`

	BookingResult *bookingResultView `json:"booking_result,omitempty"`
	Error         string             `json:"error,omitempty"`
}

type locationView struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type serviceView struct {
	ID            int    `json:"id"`
	Description   string `json:"description"`
	ServiceLength *int   `json:"service_length,omitempty"`
}

type bayView struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Capacity    *int   `json:"capacity,omitempty"`
}

type slotView struct {
	Index     int      `json:"index"`
	StartTime string   `json:"start_time"`
	Display   string   `json:"display"`
	Fee       *float64 `json:"fee,omitempty"`
}

type bookingResultView struct {
	ReservationID int      `json:"reservation_id"`
	Description   *string  `json:"description,omitempty"`
	StartTime     *string  `json:"start_time,omitempty"`
	Price         *float64 `json:"price,omitempty"`
}

func newStateView(s booking.Session) stateView {
	view := stateView{
		AttemptID:         s.ID.String(),
		Step:              s.Step.String(),
		StepTitle:         s.Step.Title(),
		CanGoBack:         s.Step > booking.StepSelectService,
		Services:          make([]serviceView, 0, len(s.Services)),
		GroupSize:         s.GroupSize,
		CannotAccommodate: s.CannotAccommodate(),
		Duration:          s.Duration,
		DurationDisplay:   booking.FormatDuration(s.Duration),
		DurationOptions:   booking.DurationOptions,
		SelectedDate:      s.SelectedDate.Format("2006-01-02"),
		Notes:             s.Notes,
		EligibleBays:      make([]bayView, 0),
		Slots:             make([]slotView, 0, len(s.AvailableSlots)),
		EstimatedPrice:    s.EstimatedPrice,
		PriceDisplay:      booking.FormatPrice(s.EstimatedPrice),
		Error:             s.ErrorMessage,
	}
	switch s.Step {
	case booking.StepSelectService:
		view.CanGoNext = s.CanProceedToGuests()
	case booking.StepSelectGuests:
		view.CanGoNext = s.CanProceedToBay()
	case booking.StepSelectBay:
		view.CanGoNext = s.CanProceedToDateTime()
	case booking.StepSelectDateTime:
		view.CanGoNext = s.CanConfirm()
	}

	if s.Location != nil {
		view.Location = &locationView{ID: s.Location.ID, Description: s.Location.Description}
	}
	for _, svc := range s.Services {
		view.Services = append(view.Services, serviceView{
			ID:            svc.ID,
			Description:   svc.Description,
			ServiceLength: svc.ServiceLength,
		})
	}
	for _, bay := range s.EligibleBays() {
		view.EligibleBays = append(view.EligibleBays, bayView{
			ID:          bay.ID,
			Description: bay.Description,
			Capacity:    bay.Capacity,
		})
	}
	if s.SelectedBay != nil {
		view.SelectedBay = &bayView{
			ID:          s.SelectedBay.ID,
			Description: s.SelectedBay.Description,
			Capacity:    s.SelectedBay.Capacity,
		}
	}
	for i, slot := range s.AvailableSlots {
		view.Slots = append(view.Slots, newSlotView(i, slot))
	}
	if s.SelectedSlot != nil {
		for i, slot := range s.AvailableSlots {
			if uschedule.SameSlot(*s.SelectedSlot, slot) {
				sv := newSlotView(i, slot)
				view.SelectedSlot = &sv
				break
			}
		}
	}
	if s.BookingResult != nil {
		view.BookingResult = &bookingResultView{
			ReservationID: s.BookingResult.ID,
			Description:   s.BookingResult.Description,
			StartTime:     s.BookingResult.StartTime,
			Price:         s.BookingResult.Price,
		}
	}
	return view
}

func newSlotView(index int, slot uschedule.AvailabilitySlot) slotView {
	sv := slotView{Index: index, Fee: slot.Fee}
	if slot.StartTime != nil {
		sv.StartTime = *slot.StartTime
	}
	switch {
	case slot.TimeString != nil && *slot.TimeString != "":
		sv.Display = *slot.TimeString
	case slot.StartTime != nil:
		if t, ok := uschedule.ParseWireDate(*slot.StartTime); ok {
			sv.Display = t.Format("3:04 PM")
		} else {
			sv.Display = *slot.StartTime
		}
	}
	return sv
}

// appointmentView is one upcoming-appointment row.
type appointmentView struct {
	ID           int      `json:"id"`
	Description  *string  `json:"description,omitempty"`
	StartTime    *string  `json:"start_time,omitempty"`
	EndTime      *string  `json:"end_time,omitempty"`
	LocationName *string  `json:"location_name,omitempty"`
	ServiceName  *string  `json:"service_name,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Status       string   `json:"status"`
	CanCancel    bool     `json:"can_cancel"`
}

func newAppointmentView(appt uschedule.Appointment, now time.Time) appointmentView {
	return appointmentView{
		ID:           appt.ID,
		Description:  appt.Description,
		StartTime:    appt.StartTime,
		EndTime:      appt.EndTime,
		LocationName: appt.LocationName,
		ServiceName:  appt.ServiceName,
		Price:        appt.Price,
		Status:       uschedule.StatusDisplayName(appt.StatusID),
		CanCancel:    booking.CanCancel(appt, now),
	}
}
