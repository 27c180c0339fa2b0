package uschedule

import (
	"errors"
	"fmt"
)

// HTTPError is a non-200 vendor response. The body often carries a
// human-readable business-rule reason (capacity conflicts, past-cutoff
// cancellations) and is preserved verbatim.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("uschedule: server %d: %s", e.Status, e.Body)
}

// AsHTTPError unwraps err into an *HTTPError if one is in the chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// DecodeError is a response whose shape did not match the declared schema.
// Treated as non-retryable: a schema mismatch needs investigation, not a
// retry.
type DecodeError struct {
	Endpoint string
	Cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("uschedule: decode %s response: %v", e.Endpoint, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// IsRetryable reports whether re-invoking the failed operation could
// plausibly succeed. Connectivity and timeout failures are retryable;
// vendor rejections and schema mismatches are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return false
	}
	var de *DecodeError
	return !errors.As(err, &de)
}
