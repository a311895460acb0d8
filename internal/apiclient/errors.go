package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind classifies a failed API call for user-facing reporting.
type Kind int

const (
	// KindTimeout covers deadline and connection-timeout failures.
	KindTimeout Kind = iota
	// KindUnreachable covers refused/unreachable network failures.
	KindUnreachable
	// KindServer covers HTTP responses with a 4xx/5xx status.
	KindServer
	// KindOther is everything else (decode failures, bad input, ...).
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindServer:
		return "server"
	default:
		return "other"
	}
}

// Error is a classified API failure. Status is set for KindServer.
type Error struct {
	Kind   Kind
	Status int
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindServer {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retriable reports whether the failure is transient. Only timeouts and
// unreachable networks qualify; server errors and decode failures do not.
func (e *Error) Retriable() bool {
	return e.Kind == KindTimeout || e.Kind == KindUnreachable
}

// classify wraps a transport error with its Kind.
func classify(op string, err error) *Error {
	kind := KindOther

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		kind = KindUnreachable
	}

	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from an error chain, defaulting to KindOther.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}
