package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/loftgolf/booking-platform/internal/booking"
	"github.com/loftgolf/booking-platform/internal/uschedule"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

// vendorAuthenticator is the auth slice of the USchedule client.
type vendorAuthenticator interface {
	Login(ctx context.Context, username, password string) (*uschedule.Session, *uschedule.UserDetails, error)
	Impersonate(ctx context.Context, searchField, value string) (*uschedule.Session, *uschedule.UserDetails, error)
	Register(ctx context.Context, req uschedule.RegisterRequest) (*uschedule.Session, *uschedule.UserDetails, error)
}

// AuthHandler exchanges credentials for platform sessions.
type AuthHandler struct {
	auth     vendorAuthenticator
	manager  *booking.Manager
	sessions *SessionRegistry
	logger   *logging.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth vendorAuthenticator, manager *booking.Manager, sessions *SessionRegistry, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{auth: auth, manager: manager, sessions: sessions, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type impersonateRequest struct {
	SearchField string `json:"search_field,omitempty"`
	Value       string `json:"value"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	User      userResponse `json:"user"`
}

type userResponse struct {
	UserID     int    `json:"user_id"`
	Username   string `json:"username"`
	AccountID  int    `json:"account_id"`
	IsCustomer bool   `json:"is_customer"`
}

// Login validates a username/password pair against the vendor.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	vendor, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondAuthError(w, "login", err)
		return
	}
	h.startSession(w, r, vendor, user)
}

// Impersonate issues a session for a known customer without a password.
// POST /api/auth/impersonate
func (h *AuthHandler) Impersonate(w http.ResponseWriter, r *http.Request) {
	var req impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		jsonError(w, "value is required", http.StatusBadRequest)
		return
	}

	vendor, user, err := h.auth.Impersonate(r.Context(), req.SearchField, req.Value)
	if err != nil {
		h.respondAuthError(w, "impersonate", err)
		return
	}
	h.startSession(w, r, vendor, user)
}

// Register creates a vendor account and logs it in.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" {
		jsonError(w, "username and password are required", http.StatusBadRequest)
		return
	}
	if !strings.Contains(req.Email, "@") {
		jsonError(w, "invalid email format", http.StatusBadRequest)
		return
	}

	payload := uschedule.RegisterRequest{
		UserName:  req.Username,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		payload.Phone = &phone
	}

	vendor, user, err := h.auth.Register(r.Context(), payload)
	if err != nil {
		// The vendor reports duplicate username/email/phone as 400 with a
		// reason body worth showing.
		if he, ok := uschedule.AsHTTPError(err); ok && he.Status == http.StatusBadRequest {
			jsonError(w, he.Body, http.StatusConflict)
			return
		}
		h.respondAuthError(w, "register", err)
		return
	}
	h.startSession(w, r, vendor, user)
}

// Logout tears the platform session down.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		jsonError(w, "no session", http.StatusUnauthorized)
		return
	}
	h.manager.Delete(sess.ID)
	h.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, vendor *uschedule.Session, user *uschedule.UserDetails) {
	id, orchestrator := h.manager.Create(vendor)
	h.sessions.Add(&AuthSession{ID: id, Vendor: vendor, User: user, CreatedAt: time.Now()})

	// Warm the catalog so the wizard opens populated. A failure here is
	// recoverable via POST /api/booking/catalog.
	if err := orchestrator.LoadCatalog(r.Context()); err != nil {
		h.logger.Warn("catalog warmup failed", "session_id", id, "error", err)
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: id.String(),
		User: userResponse{
			UserID:     user.UserID,
			Username:   user.Username,
			AccountID:  user.AccountID,
			IsCustomer: user.IsCustomer,
		},
	})
}

func (h *AuthHandler) respondAuthError(w http.ResponseWriter, op string, err error) {
	if he, ok := uschedule.AsHTTPError(err); ok {
		switch he.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			jsonError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	}
	h.logger.Error("vendor auth failed", "op", op, "error", err)
	jsonError(w, "scheduling provider unavailable", http.StatusBadGateway)
}
