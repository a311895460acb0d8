// Package retry wraps fallible operations with a bounded linear backoff.
//
// The policy is deliberately simple: a fixed attempt budget and a wait of
// base×attempt between tries. There is no jitter and no cap; with the default
// three attempts the worst case sleeps base and then 2×base.
package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

const (
	// DefaultMaxAttempts is the attempt budget when none is configured.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the first inter-attempt wait.
	DefaultBaseDelay = time.Second
)

// Classifier reports whether an error is transient and worth retrying.
type Classifier func(error) bool

// Options configures a retry loop.
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retriable   Classifier
	// Sleep is overridable in tests; nil uses a context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Option mutates Options.
type Option func(*Options)

// WithMaxAttempts sets the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(o *Options) { o.MaxAttempts = n }
}

// WithBaseDelay sets the base inter-attempt wait.
func WithBaseDelay(d time.Duration) Option {
	return func(o *Options) { o.BaseDelay = d }
}

// WithClassifier replaces the default transient-error check.
func WithClassifier(c Classifier) Option {
	return func(o *Options) { o.Retriable = c }
}

// WithSleep replaces the sleep function. Tests use this to avoid real waits.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Options) { o.Sleep = fn }
}

// transient is implemented by errors that know their own retry eligibility.
type transient interface {
	Retriable() bool
}

// IsRetriable is the default classifier: connection timeouts and
// network-unreachable conditions qualify, everything else propagates
// immediately.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}

	var t transient
	if errors.As(err, &t) {
		return t.Retriable()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do invokes op until it succeeds, fails with a non-retriable error, or the
// attempt budget runs out. The wait before attempt n+1 is BaseDelay×n.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts ...Option) (T, error) {
	o := Options{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Retriable:   IsRetriable,
		Sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= o.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == o.MaxAttempts || !o.Retriable(err) {
			return zero, err
		}

		if serr := o.Sleep(ctx, o.BaseDelay*time.Duration(attempt)); serr != nil {
			return zero, serr
		}
	}
	return zero, lastErr
}
