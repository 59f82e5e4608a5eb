package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Schedule selects how the delay grows between attempts.
type Schedule int

const (
	// Linear waits attempt × Delay.
	Linear Schedule = iota
	// Exponential doubles the delay (with jitter) starting at Delay.
	Exponential
)

// RetryPolicy describes how one class of call recovers from transient
// failures. The zero value never retries.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
	Schedule   Schedule
}

// ReadPolicy is the default for idempotent calls: two extra attempts
// after waiting one and then two seconds.
func ReadPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Delay: time.Second, Schedule: Linear}
}

// WritePolicy is the default for non-idempotent calls.
func WritePolicy() RetryPolicy {
	return RetryPolicy{}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	switch p.Schedule {
	case Exponential:
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.Delay
		eb.MaxElapsedTime = 0
		b = eb
	default:
		b = &linearBackOff{step: p.Delay}
	}
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// Retry runs op under the policy. Wrap an error with backoff.Permanent to
// stop early.
func Retry(ctx context.Context, policy RetryPolicy, name string, op func() error) error {
	notify := func(err error, wait time.Duration) {
		slog.Warn("Transient failure, retrying", "component", "gateway", "operation", name, "wait", wait, "error", err)
	}
	return backoff.RetryNotify(op, policy.backOff(ctx), notify)
}

type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() { b.attempt = 0 }
