// Package booking implements the reservation wizard: a linear five-step
// state machine over the USchedule vendor API. Flow:
// Service -> Guests -> Bay -> DateTime -> Confirm.
package booking

// Step is one stage of the booking wizard. Steps are integer-ordered and
// navigation moves by one, forward or backward, with no wraparound.
type Step int

const (
	StepSelectService Step = iota
	StepSelectGuests
	StepSelectBay
	StepSelectDateTime
	StepConfirmation
)

// Title returns the user-facing label for the step.
func (s Step) Title() string {
	switch s {
	case StepSelectService:
		return "Service"
	case StepSelectGuests:
		return "Guests"
	case StepSelectBay:
		return "Bay"
	case StepSelectDateTime:
		return "Date & Time"
	case StepConfirmation:
		return "Confirm"
	default:
		return "Unknown"
	}
}

// String implements fmt.Stringer for logs.
func (s Step) String() string {
	switch s {
	case StepSelectService:
		return "select_service"
	case StepSelectGuests:
		return "select_guests"
	case StepSelectBay:
		return "select_bay"
	case StepSelectDateTime:
		return "select_datetime"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// first and last steps are terminal for navigation purposes.
const (
	firstStep = StepSelectService
	lastStep  = StepConfirmation
)
