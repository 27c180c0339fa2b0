package uschedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL: baseURL,
		Alias:   "loftgolfstudios",
		AppKey:  "test-app-key",
	}, nil)
}

func TestListLocationsSendsHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/loftgolfstudios/locations" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("X-US-Application-Key") != "test-app-key" {
			t.Fatal("missing application key header")
		}
		if r.Header.Get("X-US-AuthToken") != "tok-1" {
			t.Fatal("missing auth token header")
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{"Id": 1, "Description": "Loft Golf Studios"}})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	locs, err := c.ListLocations(context.Background(), &Session{Token: "tok-1"})
	if err != nil {
		t.Fatalf("ListLocations error: %v", err)
	}
	if len(locs) != 1 || locs[0].ID != 1 {
		t.Fatalf("unexpected locations: %+v", locs)
	}
}

func TestSessionHostOverridesBase(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer ts.Close()

	c := newTestClient("http://unreachable.invalid")
	_, err := c.ListServices(context.Background(), &Session{Token: "tok", Host: ts.URL})
	if err != nil {
		t.Fatalf("expected pinned session host to be used, got %v", err)
	}
}

func TestQueryAvailabilityPostsRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/loftgolfstudios/getavailability" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req AvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode availability request: %v", err)
		}
		if req.LocationID != 10 || req.StartDate != "2025-10-25T00:00:00" {
			t.Fatalf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"StartTime": "2025-10-25T09:00:00", "TimeString": "9:00 AM", "Fee": 45.0},
			{"StartTime": "2025-10-25T10:00:00", "TimeString": "10:00 AM"},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	groupSize := 2
	slots, err := c.QueryAvailability(context.Background(), &Session{Token: "tok"}, AvailabilityRequest{
		LocationID: 10,
		GroupSize:  &groupSize,
		StartDate:  "2025-10-25T00:00:00",
	})
	if err != nil {
		t.Fatalf("QueryAvailability error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Fee == nil || *slots[0].Fee != 45.0 {
		t.Fatalf("unexpected first slot: %+v", slots[0])
	}
}

func TestFindAvailableResources(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"AvailableEmployees": []map[string]any{{"Id": 77}},
			"AvailableResources": []map[string]any{{"Resource": map[string]any{"Id": 88}}},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	res, err := c.FindAvailableResources(context.Background(), &Session{Token: "tok"}, 10, 20)
	if err != nil {
		t.Fatalf("FindAvailableResources error: %v", err)
	}
	if id := res.FirstEmployeeID(); id == nil || *id != 77 {
		t.Fatalf("unexpected employee id: %v", id)
	}
	if id := res.FirstResourceID(); id == nil || *id != 88 {
		t.Fatalf("unexpected resource id: %v", id)
	}
}

func TestFirstIDsEmptySets(t *testing.T) {
	var res AvailableEmployeeResources
	if res.FirstEmployeeID() != nil {
		t.Fatal("expected nil employee id for empty set")
	}
	if res.FirstResourceID() != nil {
		t.Fatal("expected nil resource id for empty set")
	}
}

func TestCreateBookingMissingIDIsDecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"Description": "no id here"})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	_, err := c.CreateBooking(context.Background(), &Session{Token: "tok"}, BookingDraft{LocationID: 1})
	if err == nil {
		t.Fatal("expected error for missing reservation id")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %T: %v", err, err)
	}
	if IsRetryable(err) {
		t.Fatal("decode errors must not be retryable")
	}
}

func TestCancelBookingBusinessRuleRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode cancel request: %v", err)
		}
		if req.ID != 42 {
			t.Fatalf("unexpected cancel id %d", req.ID)
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("too close to start time"))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	err := c.CancelBooking(context.Background(), &Session{Token: "tok"}, 42)
	he, ok := AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", he.Status)
	}
	if he.Body != "too close to start time" {
		t.Fatalf("expected verbatim body, got %q", he.Body)
	}
	if IsRetryable(err) {
		t.Fatal("vendor rejections must not be retryable")
	}
}

func TestNetworkErrorIsRetryable(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	_, err := c.ListLocations(context.Background(), &Session{Token: "tok"})
	if err == nil {
		t.Fatal("expected network error")
	}
	if !IsRetryable(err) {
		t.Fatalf("network errors must be retryable, got %v", err)
	}
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	_, err := c.ListAppointments(context.Background(), &Session{Token: "tok"})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
