package uschedule

import (
	"context"
	"fmt"

	"github.com/loftgolf/booking-platform/pkg/logging"
)

// Authenticator exchanges credentials for a vendor session. Auth calls try
// each configured host in order (staging, then production); the first
// success wins and its host is pinned into the returned Session so every
// data call for that session targets the host that issued the token. When
// all hosts fail, the last failure surfaces to the caller.
type Authenticator struct {
	hosts  []string
	client *Client
	logger *logging.Logger
}

// NewAuthenticator builds an authenticator over the given hosts. The
// client supplies the alias/app-key wiring and HTTP transport.
func NewAuthenticator(hosts []string, client *Client, logger *logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Authenticator{hosts: hosts, client: client, logger: logger}
}

// Login validates a username/password pair.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, *UserDetails, error) {
	return a.authenticate(ctx, "validateuser", loginRequest{UserName: username, Password: password})
}

// Impersonate exchanges an identity claim for a session without a
// password (front-desk flow). searchField names the lookup column,
// usually "username".
func (a *Authenticator) Impersonate(ctx context.Context, searchField, value string) (*Session, *UserDetails, error) {
	if searchField == "" {
		searchField = "username"
	}
	return a.authenticate(ctx, "impersonateuser", impersonateRequest{SearchField: searchField, Value: value})
}

// Register creates an account. The vendor enforces uniqueness and rejects
// duplicates with HTTP 400 and a reason body.
func (a *Authenticator) Register(ctx context.Context, req RegisterRequest) (*Session, *UserDetails, error) {
	return a.authenticate(ctx, "registeruser", req)
}

func (a *Authenticator) authenticate(ctx context.Context, endpoint string, payload interface{}) (*Session, *UserDetails, error) {
	if len(a.hosts) == 0 {
		return nil, nil, fmt.Errorf("uschedule: no auth hosts configured")
	}

	var lastErr error
	for _, host := range a.hosts {
		details, err := a.tryHost(ctx, host, endpoint, payload)
		if err != nil {
			a.logger.Debug("auth attempt failed", "endpoint", endpoint, "host", host, "error", err)
			lastErr = err
			continue
		}
		return &Session{Token: details.AuthKey, Host: host}, details, nil
	}
	return nil, nil, lastErr
}

func (a *Authenticator) tryHost(ctx context.Context, host, endpoint string, payload interface{}) (*UserDetails, error) {
	sess := &Session{Host: host}
	var details UserDetails
	if err := a.client.post(ctx, sess, endpoint, payload, &details); err != nil {
		return nil, err
	}
	if details.AuthKey == "" {
		return nil, &DecodeError{Endpoint: endpoint, Cause: fmt.Errorf("missing AuthKey")}
	}
	return &details, nil
}
