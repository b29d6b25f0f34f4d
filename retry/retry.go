// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/modelkit/core"
)

// Policy configures retry behavior for outbound provider calls.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64

	// MaxInterval caps the delay between attempts.
	MaxInterval time.Duration

	// OnStatusCodes lists HTTP status codes to retry in addition to the
	// 5xx range. Client errors (4xx) are terminal unless listed here.
	OnStatusCodes []int
}

// DefaultPolicy returns the standard policy: 10 attempts, 2s initial
// backoff, 5x multiplier, 3 minute cap, no extra retryable codes.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     10,
		InitialInterval: 2 * time.Second,
		Multiplier:      5,
		MaxInterval:     3 * time.Minute,
	}
}

// Execute runs fn under the policy. fn is retried while it returns a
// retryable error and attempts remain; sleeps between attempts are
// context-aware. When attempts are exhausted the last error is wrapped
// as core.NonTransientError. Non-retryable errors return immediately,
// unchanged.
func Execute(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("call succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if !policy.retryable(lastErr) {
			return lastErr
		}

		if attempt == maxAttempts {
			break
		}

		slog.Debug("call failed, will retry",
			"attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		timer := time.NewTimer(policy.interval(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return core.NonTransient(fmt.Errorf("retry attempts exhausted after %d tries: %w", maxAttempts, lastErr))
}

// interval computes the backoff delay after the given attempt:
// InitialInterval * Multiplier^(attempt-1), capped at MaxInterval.
func (p Policy) interval(attempt int) time.Duration {
	initial := p.InitialInterval
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	delay := float64(initial)
	for i := 1; i < attempt; i++ {
		delay *= multiplier
		if p.MaxInterval > 0 && delay >= float64(p.MaxInterval) {
			return p.MaxInterval
		}
	}
	d := time.Duration(delay)
	if p.MaxInterval > 0 && d > p.MaxInterval {
		return p.MaxInterval
	}
	return d
}

// retryable classifies err. Precondition and non-transient failures are
// terminal; explicitly transient errors and bare transport errors are
// retryable; status errors follow the 5xx rule plus the allow list.
func (p Policy) retryable(err error) bool {
	var pre *core.PreconditionError
	if asErr(err, &pre) {
		return false
	}
	var nt *core.NonTransientError
	if asErr(err, &nt) {
		return false
	}
	var tr *core.TransientError
	if asErr(err, &tr) {
		return true
	}
	var status *StatusError
	if asErr(err, &status) {
		if slices.Contains(p.OnStatusCodes, status.Code) {
			return true
		}
		return status.Code >= 500
	}
	// Untyped errors are assumed to be transport-level and transient.
	return true
}
