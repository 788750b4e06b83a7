// Package retry implements the bounded exponential backoff the engine
// applies to transient store errors (spec §5, §7), generalized from the
// teacher's CacheManager.WithRetry (shared/cache/go/cache_manager.go).
package retry

import (
	"context"
	"math"
	"time"

	"adaptive-engine/internal/errs"
)

// Priority buckets pace retries differently: high-priority operations (a
// user waiting on start_session) retry fast and give up quickly; low
// priority (background ladder regeneration) can wait longer between tries.
type Priority string

const (
	High   Priority = "high"
	Normal Priority = "normal"
	Low    Priority = "low"
)

// Policy bounds a retry loop by attempt count, base delay, and an overall
// deadline.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Deadline    time.Duration
}

// DefaultPolicies mirrors the priority buckets named in spec §5.
var DefaultPolicies = map[Priority]Policy{
	High:   {MaxAttempts: 5, BaseDelay: 20 * time.Millisecond, MaxDelay: 500 * time.Millisecond, Deadline: 3 * time.Second},
	Normal: {MaxAttempts: 4, BaseDelay: 50 * time.Millisecond, MaxDelay: 1 * time.Second, Deadline: 8 * time.Second},
	Low:    {MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 3 * time.Second, Deadline: 20 * time.Second},
}

// Do runs op, retrying transient (errs.Retryable) failures with exponential
// backoff bounded by policy. A Cancelled error or ctx cancellation always
// propagates immediately, never retried.
func Do(ctx context.Context, priority Priority, op func(context.Context) error) error {
	policy, ok := DefaultPolicies[priority]
	if !ok {
		policy = DefaultPolicies[Normal]
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, policy.Deadline)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if err := deadlineCtx.Err(); err != nil {
			if ctx.Err() != nil {
				return errs.Wrap(errs.Cancelled, "operation cancelled", ctx.Err())
			}
			return errs.Wrap(errs.StoreUnavailable, "retry deadline exceeded", lastErr)
		}

		lastErr = op(deadlineCtx)
		if lastErr == nil {
			return nil
		}
		if errs.KindOf(lastErr) == errs.Cancelled {
			return lastErr
		}
		if !errs.Retryable(lastErr) {
			return lastErr
		}

		delay := time.Duration(math.Min(
			float64(policy.MaxDelay),
			float64(policy.BaseDelay)*math.Pow(2, float64(attempt)),
		))
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return errs.Wrap(errs.Cancelled, "operation cancelled", ctx.Err())
			}
			return errs.Wrap(errs.StoreUnavailable, "retry deadline exceeded", lastErr)
		case <-timer.C:
		}
	}

	return errs.Wrap(errs.StoreUnavailable, "exhausted retry attempts", lastErr)
}
