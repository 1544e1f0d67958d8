package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/content-extraction/infrastructure/retry"
)

var errRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

func fastConfig(attempts int) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	var retried []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }

	err := retry.Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errRefused
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("password authentication failed")
	calls := 0

	err := retry.Do(context.Background(), fastConfig(5), func(context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.NotErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), fastConfig(2), func(context.Context) error {
		calls++
		return errRefused
	})

	assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, errRefused)
	assert.Equal(t, 2, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := retry.Do(ctx, fastConfig(3), func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, retry.IsTransient(errRefused))
	assert.True(t, retry.IsTransient(errors.New("i/o TIMEOUT")))
	assert.False(t, retry.IsTransient(context.Canceled))
	assert.False(t, retry.IsTransient(errors.New("relation does not exist")))
	assert.False(t, retry.IsTransient(nil))
}
