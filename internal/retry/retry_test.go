package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string   { return fmt.Sprintf("upstream returned %d", e.code) }
func (e *statusErr) StatusCode() int { return e.code }

func fakeSleepPolicy(p Policy, slept *[]time.Duration) Policy {
	p.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return p
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	var slept []time.Duration
	p := fakeSleepPolicy(Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, Multiplier: 2}, &slept)

	calls := 0
	err := p.Do(context.Background(), IsTransient, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &statusErr{code: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	// delay schedule: base, then base×multiplier
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept)
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	var slept []time.Duration
	p := fakeSleepPolicy(DefaultPolicy(), &slept)

	calls := 0
	permanent := &statusErr{code: 400}
	err := p.Do(context.Background(), IsTransient, func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDoExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	p := fakeSleepPolicy(Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 3}, &slept)

	calls := 0
	err := p.Do(context.Background(), IsTransient, func(ctx context.Context) error {
		calls++
		return errors.New("503 service unavailable")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, Multiplier: 2}
	calls := 0
	err := p.Do(ctx, IsTransient, func(ctx context.Context) error {
		calls++
		return &statusErr{code: 500}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	p := Policy{}
	calls := 0
	err := p.Do(context.Background(), nil, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 500", &statusErr{code: 500}, true},
		{"status 502", &statusErr{code: 502}, true},
		{"status 503", &statusErr{code: 503}, true},
		{"status 504", &statusErr{code: 504}, true},
		{"status 400", &statusErr{code: 400}, false},
		{"status 401", &statusErr{code: 401}, false},
		{"wrapped status", fmt.Errorf("calling model: %w", &statusErr{code: 503}), true},
		{"server error marker", errors.New("internal server error"), true},
		{"timeout marker", errors.New("request timeout"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"plain", errors.New("invalid prompt"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
