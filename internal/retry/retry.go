// Package retry provides an explicit retry policy for external API calls.
//
// A Policy is composed around any operation together with a classifier that
// decides whether a failure is worth retrying. Non-retryable errors and
// exhausted budgets propagate immediately; each attempt is a fresh call.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Classifier reports whether an error should be retried.
type Classifier func(error) bool

// Policy defines a bounded exponential backoff schedule.
// The delay before attempt n+1 is BaseDelay × Multiplier^n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64

	// sleep is overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy mirrors the service defaults: three attempts, 2s base delay,
// doubling between attempts.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, Multiplier: 2}
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// attempt budget is exhausted. The context is checked between attempts.
func (p Policy) Do(ctx context.Context, classify Classifier, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if classify == nil || !classify(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// transientMarkers are substrings that mark an error as likely to resolve
// on retry when no structured status code is available.
var transientMarkers = []string{
	"500",
	"502",
	"503",
	"504",
	"server error",
	"overloaded",
	"timeout",
	"deadline exceeded",
}

// StatusCoder is implemented by errors that carry an upstream HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// IsTransient classifies upstream failures: 5xx status codes, timeouts, and
// generic server-error markers are transient; everything else is permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
