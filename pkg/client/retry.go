package client

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// RetryConfig configures connect retries.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts.
	MaxAttempts int

	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration

	// BackoffFactor multiplies the delay after every attempt.
	BackoffFactor float64

	// Jitter spreads the delay by up to 25% either way.
	Jitter bool
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// retry calls fn until it succeeds, the attempts run out, ctx ends or fn
// returns a configuration error. A timeout inside fn is retried while ctx is
// still live. fn receives the 1-based attempt.
func retry(ctx context.Context, config RetryConfig, fn func(attempt int) error) error {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if !retryable(lastErr) || attempt == config.MaxAttempts {
			break
		}

		wait := delay
		if config.Jitter && wait > 0 {
			spread := float64(wait) * 0.25
			wait = time.Duration(float64(wait) - spread + rand.Float64()*2*spread)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return !sphinxql.IsConfiguration(err)
}
