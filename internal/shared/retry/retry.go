// Package retry provides a fixed-delay retry policy shared by the
// persistence layer and the batch coordinator.
package retry

import (
	"context"
	"time"
)

// Policy describes a bounded retry loop with a fixed delay between attempts.
// Keeping the policy an explicit value (instead of a decorator) keeps retry
// behavior visible at the call site and independently testable.
type Policy struct {
	MaxAttempts int           // Total attempts including the first one
	Delay       time.Duration // Fixed wait between attempts
}

// DefaultPolicy matches the provider's free-tier pacing: three attempts with
// a one minute pause.
var DefaultPolicy = Policy{MaxAttempts: 3, Delay: time.Minute}

// normalized returns the policy with a sane lower bound on attempts.
func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return p
}

// Do runs op up to p.MaxAttempts times, sleeping p.Delay between attempts.
// It stops early when op succeeds, when retryable reports the error as
// permanent, or when ctx is canceled during the wait. The last error is
// returned after the attempts are exhausted.
func (p Policy) Do(ctx context.Context, op func() error, retryable func(error) bool) error {
	p = p.normalized()

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		if werr := p.Wait(ctx); werr != nil {
			return werr
		}
	}
	return err
}

// Wait blocks for the policy delay or until ctx is canceled.
func (p Policy) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
