// Package httperr defines the error taxonomy shared by the transports and the
// client façade. Every failure a caller can observe is one of four kinds:
// timeout, network, HTTP status, or serialization. Each kind has a sentinel
// for errors.Is checks and, where callers need details, a typed carrier for
// errors.As.
package httperr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Static error definitions for better error handling.
var (
	// ErrTimeout indicates that the deadline elapsed before the request settled.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork indicates a transport-level failure with no HTTP response.
	ErrNetwork = errors.New("network failure")
	// ErrHTTPStatus indicates that a response was received but its status signals failure.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrSerialization indicates that the response body could not be decoded as requested.
	ErrSerialization = errors.New("failed to decode response body")
)

// TimeoutError is returned when an operation exceeds its configured deadline.
// It carries the deadline so callers can report which budget was exhausted.
type TimeoutError struct {
	// Configured is the timeout that was in effect when the operation expired.
	Configured time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Configured <= 0 {
		return ErrTimeout.Error()
	}

	return fmt.Sprintf("request timed out after %s", e.Configured)
}

// Unwrap makes the error matchable via errors.Is(err, ErrTimeout).
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// StatusError is returned when a response arrives with a failure status.
// Detail holds a best-effort excerpt of the response body; it may be empty
// when the body could not be read.
type StatusError struct {
	// StatusCode is the numeric HTTP status, e.g. 500.
	StatusCode int
	// Status is the status text, e.g. "Internal Server Error".
	Status string
	// Detail is a body-derived error excerpt, best-effort.
	Detail string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %d %s", ErrHTTPStatus.Error(), e.StatusCode, e.Status)
	}

	return fmt.Sprintf("%s: %d %s: %s", ErrHTTPStatus.Error(), e.StatusCode, e.Status, e.Detail)
}

// Unwrap makes the error matchable via errors.Is(err, ErrHTTPStatus).
func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// NetworkError wraps a transport-level failure that produced no HTTP response.
type NetworkError struct {
	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Err == nil {
		return ErrNetwork.Error()
	}

	return fmt.Sprintf("%s: %v", ErrNetwork.Error(), e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}

	return []error{ErrNetwork, e.Err}
}

// SerializationError wraps a body-decoding failure. It is never retried.
type SerializationError struct {
	// Err is the underlying decoding error.
	Err error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Err == nil {
		return ErrSerialization.Error()
	}

	return fmt.Sprintf("%s: %v", ErrSerialization.Error(), e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *SerializationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSerialization}
	}

	return []error{ErrSerialization, e.Err}
}

// IsCancellation reports whether err is a raw context cancellation artifact
// (deadline or cancel) that has not yet been mapped into the taxonomy.
// The façade uses this to normalize such errors before they reach callers.
func IsCancellation(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// IsRetryable is the default transient-error predicate: everything is
// considered retryable. Callers refine the policy (for example, skipping
// client-error statuses) via the retry package's options.
func IsRetryable(_ error) bool {
	return true
}
