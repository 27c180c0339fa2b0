package uschedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func authServer(t *testing.T, status int, details map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-US-Application-Key") == "" {
			t.Fatal("auth call missing application key")
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("login failed"))
			return
		}
		_ = json.NewEncoder(w).Encode(details)
	}))
}

func TestLoginStagingWins(t *testing.T) {
	staging := authServer(t, http.StatusOK, map[string]any{
		"UserId": 7, "AuthKey": "staging-token", "AccountID": 1, "Username": "jdoe", "IsCustomer": true,
	})
	defer staging.Close()
	prod := authServer(t, http.StatusOK, map[string]any{
		"UserId": 7, "AuthKey": "prod-token", "AccountID": 1, "Username": "jdoe", "IsCustomer": true,
	})
	defer prod.Close()

	client := newTestClient("")
	auth := NewAuthenticator([]string{staging.URL, prod.URL}, client, nil)

	sess, details, err := auth.Login(context.Background(), "jdoe", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if sess.Token != "staging-token" {
		t.Fatalf("expected staging to win, got token %s", sess.Token)
	}
	if sess.Host != staging.URL {
		t.Fatalf("expected host pinned to staging, got %s", sess.Host)
	}
	if details.Username != "jdoe" {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestLoginFallsBackToProduction(t *testing.T) {
	staging := authServer(t, http.StatusInternalServerError, nil)
	defer staging.Close()
	prod := authServer(t, http.StatusOK, map[string]any{
		"UserId": 7, "AuthKey": "prod-token", "AccountID": 1, "Username": "jdoe", "IsCustomer": true,
	})
	defer prod.Close()

	auth := NewAuthenticator([]string{staging.URL, prod.URL}, newTestClient(""), nil)
	sess, _, err := auth.Login(context.Background(), "jdoe", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if sess.Host != prod.URL || sess.Token != "prod-token" {
		t.Fatalf("expected production session, got %+v", sess)
	}
}

func TestLoginAllHostsFailSurfacesLastError(t *testing.T) {
	staging := authServer(t, http.StatusInternalServerError, nil)
	defer staging.Close()
	prod := authServer(t, http.StatusUnauthorized, nil)
	defer prod.Close()

	auth := NewAuthenticator([]string{staging.URL, prod.URL}, newTestClient(""), nil)
	_, _, err := auth.Login(context.Background(), "jdoe", "wrong")
	he, ok := AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != http.StatusUnauthorized {
		t.Fatalf("expected the last host's failure to surface, got %d", he.Status)
	}
}

func TestAuthMissingAuthKeyIsDecodeError(t *testing.T) {
	srv := authServer(t, http.StatusOK, map[string]any{"UserId": 7, "Username": "jdoe"})
	defer srv.Close()

	auth := NewAuthenticator([]string{srv.URL}, newTestClient(""), nil)
	_, _, err := auth.Login(context.Background(), "jdoe", "secret")
	if err == nil {
		t.Fatal("expected error for missing AuthKey")
	}
	if IsRetryable(err) {
		t.Fatal("missing AuthKey is a schema mismatch, not retryable")
	}
}

func TestImpersonateDefaultsSearchField(t *testing.T) {
	var got impersonateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode impersonate request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"UserId": 7, "AuthKey": "tok"})
	}))
	defer srv.Close()

	auth := NewAuthenticator([]string{srv.URL}, newTestClient(""), nil)
	if _, _, err := auth.Impersonate(context.Background(), "", "frontdesk"); err != nil {
		t.Fatalf("Impersonate error: %v", err)
	}
	if got.SearchField != "username" || got.Value != "frontdesk" {
		t.Fatalf("unexpected impersonate payload: %+v", got)
	}
}
