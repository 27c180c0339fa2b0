// Package uschedule is a typed REST client for the USchedule scheduling
// platform. It covers the booking endpoints the Loft Golf app consumes:
// catalog reads, availability, pricing, booking, cancellation, and the
// customer/appointment projections. The client performs I/O and decoding
// only; booking rules live in internal/booking.
package uschedule

import "strings"

// Payment types accepted by getpricing/bookit.
const (
	PaymentTypePayAtLocation = 1
)

// Appointment status codes as reported by the vendor.
const (
	StatusActive      = 1
	StatusCanceled    = 9
	StatusRescheduled = 10
	StatusTentative   = 11
	StatusCompleted   = 99
)

// StatusDisplayName maps a vendor status code to a user-facing label.
func StatusDisplayName(statusID int) string {
	switch statusID {
	case StatusActive:
		return "Upcoming"
	case StatusCanceled:
		return "Canceled"
	case StatusRescheduled:
		return "Rescheduled"
	case StatusTentative:
		return "Tentative"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// UserDetails is returned by validateuser/impersonateuser/registeruser.
// AuthKey is the opaque session token carried on every authenticated call.
type UserDetails struct {
	UserID     int    `json:"UserId"`
	AuthKey    string `json:"AuthKey"`
	AccountID  int    `json:"AccountID"`
	Username   string `json:"Username"`
	IsCustomer bool   `json:"IsCustomer"`
}

type loginRequest struct {
	UserName string `json:"UserName"`
	Password string `json:"Password"`
}

type impersonateRequest struct {
	SearchField string `json:"SearchField"`
	Value       string `json:"Value"`
}

// RegisterRequest is the registeruser payload. The vendor enforces
// username/email/phone uniqueness and rejects duplicates with HTTP 400.
type RegisterRequest struct {
	UserName  string  `json:"UserName"`
	Password  string  `json:"Password"`
	FirstName string  `json:"FirstName"`
	LastName  string  `json:"LastName"`
	Email     string  `json:"Email"`
	Phone     *string `json:"Phone"`
}

// Location is a bookable venue.
type Location struct {
	ID          int    `json:"Id"`
	Description string `json:"Description"`
}

// Service is a bookable service; ServiceLength is its declared default
// duration in minutes when present.
type Service struct {
	ID            int    `json:"Id"`
	Description   string `json:"Description"`
	ServiceLength *int   `json:"ServiceLength"`
	ServiceTypeID *int   `json:"ServiceTypeID"`
}

// ServiceType groups services; only StatusID 1 entries are active.
type ServiceType struct {
	ID          int    `json:"Id"`
	Description string `json:"Description"`
	StatusID    int    `json:"StatusID"`
}

// ResourceUnit is a physical bookable unit (a simulator bay) with a guest
// capacity. Only StatusID 1 entries are active.
type ResourceUnit struct {
	ID          int    `json:"Id"`
	Description string `json:"Description"`
	Capacity    *int   `json:"Capacity"`
	StatusID    int    `json:"StatusID"`
}

// Employee is a staff member eligible to serve a booking.
type Employee struct {
	ID          int    `json:"Id"`
	Description string `json:"Description"`
}

// Resource is a schedulable resource grouping (bays hang off a resource).
type Resource struct {
	ID          int    `json:"Id"`
	Description string `json:"Description"`
}

// AvailableEmployeeResources is the availableemployeeresources response:
// the employee/resource ids an availability query may reference.
type AvailableEmployeeResources struct {
	AvailableEmployees []Employee          `json:"AvailableEmployees"`
	AvailableResources []AvailableResource `json:"AvailableResources"`
}

// AvailableResource wraps a resource entry in the discovery response.
type AvailableResource struct {
	Resource Resource `json:"Resource"`
}

// FirstEmployeeID returns the first eligible employee id, if any. The
// vendor provides no ranking signal, so first-member selection is the
// documented convention.
func (r AvailableEmployeeResources) FirstEmployeeID() *int {
	if len(r.AvailableEmployees) == 0 {
		return nil
	}
	id := r.AvailableEmployees[0].ID
	return &id
}

// FirstResourceID returns the first eligible resource id, if any.
func (r AvailableEmployeeResources) FirstResourceID() *int {
	if len(r.AvailableResources) == 0 {
		return nil
	}
	id := r.AvailableResources[0].Resource.ID
	return &id
}

// AvailabilityRequest is the getavailability payload. StartDate uses the
// vendor wire format (FormatWireDate).
type AvailabilityRequest struct {
	LocationID     int    `json:"LocationID"`
	EmployeeID     *int   `json:"EmployeeID"`
	ServiceID      *int   `json:"ServiceID"`
	ResourceID     *int   `json:"ResourceID"`
	ResourceUnitID *int   `json:"ResourceUnitID"`
	GroupSize      *int   `json:"GroupSize"`
	StartDate      string `json:"StartDate"`
	ServiceLength  *int   `json:"ServiceLength"`
	NextAvailable  bool   `json:"NextAvailable"`
}

// AvailabilitySlot is one bookable start time candidate.
type AvailabilitySlot struct {
	StartTime  *string  `json:"StartTime"`
	TimeString *string  `json:"TimeString"`
	Fee        *float64 `json:"Fee"`
}

// SameSlot reports whether two slots denote the same start time.
func SameSlot(a, b AvailabilitySlot) bool {
	if a.StartTime == nil || b.StartTime == nil {
		return false
	}
	return *a.StartTime == *b.StartTime
}

// BookingDraft is the shared getpricing/bookit payload, assembled from
// session state immediately before the call.
type BookingDraft struct {
	LocationID              int     `json:"LocationID"`
	ServiceID               *int    `json:"ServiceID"`
	EventOccurrenceID       *int    `json:"EventOccurrenceID"`
	EmployeeID              *int    `json:"EmployeeID"`
	ResourceUnitID          *int    `json:"ResourceUnitID"`
	GroupSize               *int    `json:"GroupSize"`
	StartTime               string  `json:"StartTime"`
	ServiceLength           *int    `json:"ServiceLength"`
	Notes                   *string `json:"Notes"`
	PaymentType             int     `json:"PaymentType"`
	PrepayServiceCustomerID *int    `json:"PrepayServiceCustomerID"`
}

// AppointmentResult is the getpricing/bookit response: the reservation id
// (zero for pricing previews) and the confirmed or estimated price.
type AppointmentResult struct {
	ID          int      `json:"Id"`
	Description *string  `json:"Description"`
	StartTime   *string  `json:"StartTime"`
	Price       *float64 `json:"Price"`
}

// Appointment is the read-only appointment projection used by the upcoming
// list and cancellation eligibility checks.
type Appointment struct {
	ID           int      `json:"Id"`
	Description  *string  `json:"Description"`
	StartTime    *string  `json:"StartTime"`
	EndTime      *string  `json:"EndTime"`
	LocationName *string  `json:"LocationName"`
	ServiceName  *string  `json:"ServiceName"`
	Price        *float64 `json:"Price"`
	StatusID     int      `json:"StatusID"`
}

type cancelRequest struct {
	ID int `json:"id"`
}

// Customer is the customer profile projection.
type Customer struct {
	ID              int     `json:"Id"`
	UserID          int     `json:"UserID"`
	FirstName       string  `json:"FirstName"`
	LastName        string  `json:"LastName"`
	EmailAddress    string  `json:"EmailAddress"`
	Phone           *string `json:"Phone"`
	BirthDate       *string `json:"BirthDate"`
	Gender          *string `json:"Gender"`
	Username        string  `json:"Username"`
	Reference1      *string `json:"Reference1"`
	Reference2      *string `json:"Reference2"`
	Reference3      *string `json:"Reference3"`
	StatusID        *int    `json:"StatusID"`
	MembershipID    *int    `json:"MembershipID"`
	MembershipStart *string `json:"MembershipStart"`
	MembershipExp   *string `json:"MembershipExp"`
}

// FullName joins the customer's first and last names.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PrepayService is a purchasable prepaid package definition.
type PrepayService struct {
	ID          int      `json:"Id"`
	Description string   `json:"Description"`
	Price       *float64 `json:"Price"`
	Units       *int     `json:"Units"`
	UnitName    *string  `json:"UnitName"`
}

// PrepaidPackage is a customer's purchased package with remaining units.
type PrepaidPackage struct {
	ID             int     `json:"Id"`
	Description    string  `json:"Description"`
	RemainingUnits int     `json:"RemainingUnits"`
	OriginalUnits  int     `json:"OriginalUnits"`
	EndDate        *string `json:"EndDate"`
	UnitName       string  `json:"UnitName"`
}

// UsageFraction reports how much of the package has been consumed, 0..1.
func (p PrepaidPackage) UsageFraction() float64 {
	if p.OriginalUnits <= 0 {
		return 0
	}
	return float64(p.OriginalUnits-p.RemainingUnits) / float64(p.OriginalUnits)
}
