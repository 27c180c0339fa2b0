package uschedule

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/loftgolf/booking-platform/internal/observability/metrics"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Config carries the vendor account constants. It is injected at
// construction so tests can point the client at a fake host.
type Config struct {
	// BaseURL is the host used for data calls when a session has no
	// pinned host (e.g. a token restored from storage).
	BaseURL string
	// Alias is the business account alias in the URL path.
	Alias string
	// AppKey is sent as X-US-Application-Key on every request.
	AppKey string
	// Timeout bounds each HTTP call. Zero means the 20s default.
	Timeout time.Duration
}

// Session is an authenticated vendor session: the opaque token plus the
// host it was issued by. All data calls for the session go to that host.
type Session struct {
	Token string
	Host  string
}

// Client is the USchedule REST client. It is stateless and safe to share
// across sessions. No retries are performed; retry policy is the caller's
// responsibility.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.VendorMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics attaches request metrics.
func WithMetrics(m *metrics.VendorMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient constructs a USchedule client.
func NewClient(cfg Config, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListLocations returns the account's venues.
func (c *Client) ListLocations(ctx context.Context, sess *Session) ([]Location, error) {
	var out []Location
	if err := c.get(ctx, sess, "locations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListServices returns the bookable services.
func (c *Client) ListServices(ctx context.Context, sess *Session) ([]Service, error) {
	var out []Service
	if err := c.get(ctx, sess, "services", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListServiceTypes returns service groupings; callers filter to active.
func (c *Client) ListServiceTypes(ctx context.Context, sess *Session) ([]ServiceType, error) {
	var out []ServiceType
	if err := c.get(ctx, sess, "servicetypes", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListResourceUnits returns the bays; callers filter to active.
func (c *Client) ListResourceUnits(ctx context.Context, sess *Session) ([]ResourceUnit, error) {
	var out []ResourceUnit
	if err := c.get(ctx, sess, "resourceunits", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindAvailableResources returns the employee/resource ids eligible to
// serve the given location+service. The availability query requires one
// of each; callers take the first member of each set.
func (c *Client) FindAvailableResources(ctx context.Context, sess *Session, locationID, serviceID int) (*AvailableEmployeeResources, error) {
	req := struct {
		LocationID int `json:"LocationID"`
		ServiceID  int `json:"ServiceID"`
	}{LocationID: locationID, ServiceID: serviceID}
	var out AvailableEmployeeResources
	if err := c.post(ctx, sess, "availableemployeeresources", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryAvailability returns the bookable start times for the request tuple.
func (c *Client) QueryAvailability(ctx context.Context, sess *Session, req AvailabilityRequest) ([]AvailabilitySlot, error) {
	var out []AvailabilitySlot
	if err := c.post(ctx, sess, "getavailability", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPricing returns the price preview for a booking draft. The vendor
// reuses the booking payload; the response carries no reservation id.
func (c *Client) GetPricing(ctx context.Context, sess *Session, draft BookingDraft) (*AppointmentResult, error) {
	var out AppointmentResult
	if err := c.post(ctx, sess, "getpricing", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking books the draft and returns the reservation.
func (c *Client) CreateBooking(ctx context.Context, sess *Session, draft BookingDraft) (*AppointmentResult, error) {
	var out AppointmentResult
	if err := c.post(ctx, sess, "bookit", draft, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, &DecodeError{Endpoint: "bookit", Cause: fmt.Errorf("missing reservation id")}
	}
	return &out, nil
}

// CancelBooking cancels a reservation. The vendor encodes business-rule
// rejections (e.g. too close to start time) as HTTP 400 with a text body.
func (c *Client) CancelBooking(ctx context.Context, sess *Session, reservationID int) error {
	return c.post(ctx, sess, "cancelappointment", cancelRequest{ID: reservationID}, nil)
}

// ListAppointments returns the customer's appointments.
func (c *Client) ListAppointments(ctx context.Context, sess *Session) ([]Appointment, error) {
	var out []Appointment
	if err := c.get(ctx, sess, "appointments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAppointment returns one appointment by id.
func (c *Client) GetAppointment(ctx context.Context, sess *Session, id int) (*Appointment, error) {
	req := struct {
		ID int `json:"id"`
	}{ID: id}
	var out Appointment
	if err := c.post(ctx, sess, "getappointment", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCustomer returns the authenticated customer's profile.
func (c *Client) GetCustomer(ctx context.Context, sess *Session) (*Customer, error) {
	var out Customer
	if err := c.get(ctx, sess, "customer", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPrepayServices returns the purchasable prepaid package catalog.
func (c *Client) ListPrepayServices(ctx context.Context, sess *Session) ([]PrepayService, error) {
	var out []PrepayService
	if err := c.get(ctx, sess, "prepayservices", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPrepaidPackages returns the customer's purchased packages.
func (c *Client) ListPrepaidPackages(ctx context.Context, sess *Session) ([]PrepaidPackage, error) {
	var out []PrepaidPackage
	if err := c.get(ctx, sess, "prepayservicecustomers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, sess *Session, endpoint string, out interface{}) error {
	return c.do(ctx, sess, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, sess *Session, endpoint string, body, out interface{}) error {
	return c.do(ctx, sess, http.MethodPost, endpoint, body, out)
}

func (c *Client) do(ctx context.Context, sess *Session, method, endpoint string, body, out interface{}) error {
	host := c.cfg.BaseURL
	if sess != nil && sess.Host != "" {
		host = strings.TrimRight(sess.Host, "/")
	}
	if host == "" {
		return fmt.Errorf("uschedule: no host configured for %s", endpoint)
	}
	if c.cfg.AppKey == "" {
		return fmt.Errorf("uschedule: missing application key")
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("uschedule: marshal %s request: %w", endpoint, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	url := host + "/api/" + c.cfg.Alias + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("uschedule: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-US-Application-Key", c.cfg.AppKey)
	if sess != nil && sess.Token != "" {
		req.Header.Set("X-US-AuthToken", sess.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "network_error", time.Since(start).Seconds())
		return fmt.Errorf("uschedule: %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "read_error", time.Since(start).Seconds())
		return fmt.Errorf("uschedule: read %s response: %w", endpoint, err)
	}
	c.metrics.ObserveRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("uschedule non-200 response",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"body_len", len(respBody),
		)
		return &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Cause: err}
	}
	return nil
}
