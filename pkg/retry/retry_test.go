package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoWithResultSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), fastConfig(), func(error) bool { return true }, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("overloaded")
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 3, attempts)
}

func TestDoWithResultStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("invalid api key")
	attempts := 0
	_, err := DoWithResult(context.Background(), fastConfig(), IsTransientModelError, func() (string, error) {
		attempts++
		return "", permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResultExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := DoWithResult(context.Background(), fastConfig(), func(error) bool { return true }, func() (string, error) {
		attempts++
		return "", errors.New("timeout")
	})

	require.Error(t, err)
	assert.Equal(t, 4, attempts)
}

func TestDoWithResultRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{MaxRetries: 5, InitialDelay: time.Minute, MaxDelay: time.Minute, Multiplier: 1.0}

	cancel()
	_, err := DoWithResult(ctx, cfg, func(error) bool { return true }, func() (string, error) {
		return "", errors.New("overloaded")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransientModelError(t *testing.T) {
	assert.True(t, IsTransientModelError(errors.New("anthropic API error: status code: 529, overloaded_error")))
	assert.True(t, IsTransientModelError(errors.New("Rate limit exceeded")))
	assert.True(t, IsTransientModelError(errors.New("request timeout")))
	assert.False(t, IsTransientModelError(errors.New("invalid api key")))
	assert.False(t, IsTransientModelError(nil))
}
