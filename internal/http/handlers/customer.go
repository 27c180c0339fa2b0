package handlers

import (
	"context"
	"net/http"

	"github.com/loftgolf/booking-platform/internal/uschedule"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

// customerAPI is the profile/packages slice of the USchedule client.
type customerAPI interface {
	GetCustomer(ctx context.Context, sess *uschedule.Session) (*uschedule.Customer, error)
	ListPrepayServices(ctx context.Context, sess *uschedule.Session) ([]uschedule.PrepayService, error)
	ListPrepaidPackages(ctx context.Context, sess *uschedule.Session) ([]uschedule.PrepaidPackage, error)
}

// CustomerHandler serves the customer profile and prepaid packages.
type CustomerHandler struct {
	api    customerAPI
	logger *logging.Logger
}

// NewCustomerHandler creates the customer handler.
func NewCustomerHandler(api customerAPI, logger *logging.Logger) *CustomerHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CustomerHandler{api: api, logger: logger}
}

type customerResponse struct {
	ID       int     `json:"id"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Username string  `json:"username"`
}

// Profile returns the authenticated customer's profile.
// GET /api/customer
func (h *CustomerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	c, err := h.api.GetCustomer(r.Context(), sess.Vendor)
	if err != nil {
		h.logger.Error("customer lookup failed", "error", err)
		jsonError(w, "profile lookup failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, customerResponse{
		ID:       c.ID,
		FullName: c.FullName(),
		Email:    c.EmailAddress,
		Phone:    c.Phone,
		Username: c.Username,
	})
}

type packageView struct {
	ID             int     `json:"id"`
	Description    string  `json:"description"`
	RemainingUnits int     `json:"remaining_units"`
	OriginalUnits  int     `json:"original_units"`
	UnitName       string  `json:"unit_name"`
	UsagePercent   int     `json:"usage_percent"`
	EndDate        *string `json:"end_date,omitempty"`
}

// Packages returns the customer's purchased prepaid packages.
// GET /api/customer/packages
func (h *CustomerHandler) Packages(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	packages, err := h.api.ListPrepaidPackages(r.Context(), sess.Vendor)
	if err != nil {
		h.logger.Error("packages lookup failed", "error", err)
		jsonError(w, "packages lookup failed", http.StatusBadGateway)
		return
	}
	views := make([]packageView, 0, len(packages))
	for _, p := range packages {
		views = append(views, packageView{
			ID:             p.ID,
			Description:    p.Description,
			RemainingUnits: p.RemainingUnits,
			OriginalUnits:  p.OriginalUnits,
			UnitName:       p.UnitName,
			UsagePercent:   int(p.UsageFraction() * 100),
			EndDate:        p.EndDate,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": views})
}

// PrepayCatalog returns the purchasable prepaid package definitions.
// GET /api/prepayservices
func (h *CustomerHandler) PrepayCatalog(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	catalog, err := h.api.ListPrepayServices(r.Context(), sess.Vendor)
	if err != nil {
		h.logger.Error("prepay catalog lookup failed", "error", err)
		jsonError(w, "catalog lookup failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prepay_services": catalog})
}
