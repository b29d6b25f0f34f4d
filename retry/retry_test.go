package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/modelkit/core"
)

func testPolicy(codes ...int) Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		Multiplier:      2,
		MaxInterval:     10 * time.Millisecond,
		OnStatusCodes:   codes,
	}
}

func TestExecute_SucceedsFirstTry(t *testing.T) {
	attempts := 0
	err := Execute(context.Background(), testPolicy(), func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestExecute_ServerErrorExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Execute(context.Background(), testPolicy(), func(ctx context.Context) error {
		attempts++
		return &StatusError{Code: 500, Body: "internal"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts, "must attempt exactly MaxAttempts times")

	var nt *core.NonTransientError
	assert.ErrorAs(t, err, &nt, "exhaustion surfaces a non-transient failure")

	var status *StatusError
	assert.ErrorAs(t, err, &status, "last status error stays in the chain")
}

func TestExecute_ClientErrorNotRetriedByDefault(t *testing.T) {
	attempts := 0
	err := Execute(context.Background(), testPolicy(), func(ctx context.Context) error {
		attempts++
		return &StatusError{Code: 429, Body: "slow down"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "4xx is terminal unless allow-listed")

	var nt *core.NonTransientError
	assert.False(t, errors.As(err, &nt), "error propagates unchanged, not as exhaustion")
}

func TestExecute_AllowListedClientErrorRetries(t *testing.T) {
	attempts := 0
	err := Execute(context.Background(), testPolicy(429), func(ctx context.Context) error {
		attempts++
		return &StatusError{Code: 429, Body: "slow down"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts, "allow-listed 429 retries to exhaustion")
}

func TestExecute_PreconditionNeverRetried(t *testing.T) {
	attempts := 0
	cause := core.Preconditionf("tool %q is not registered", "weather")
	err := Execute(context.Background(), testPolicy(), func(ctx context.Context) error {
		attempts++
		return cause
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, cause, err)
}

func TestExecute_TransientEventuallySucceeds(t *testing.T) {
	attempts := 0
	err := Execute(context.Background(), testPolicy(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return core.Transient(errors.New("connection reset"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecute_ContextCanceledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Execute(ctx, testPolicy(), func(ctx context.Context) error {
		attempts++
		cancel()
		return &StatusError{Code: 503}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestInterval_ExponentialWithCap(t *testing.T) {
	p := Policy{
		MaxAttempts:     10,
		InitialInterval: 2 * time.Second,
		Multiplier:      5,
		MaxInterval:     3 * time.Minute,
	}

	assert.Equal(t, 2*time.Second, p.interval(1))
	assert.Equal(t, 10*time.Second, p.interval(2))
	assert.Equal(t, 50*time.Second, p.interval(3))
	assert.Equal(t, 3*time.Minute, p.interval(4), "250s caps at 3m")
	assert.Equal(t, 3*time.Minute, p.interval(9))
}
