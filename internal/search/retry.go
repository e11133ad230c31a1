package search

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RetryConfig configures operation-level retries with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts.
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry; each subsequent
	// retry doubles it.
	// Default: 1 second
	BaseDelay time.Duration
}

// ItemRetryConfig configures item-level retries with a constant delay.
type ItemRetryConfig struct {
	// MaxAttempts is the total number of attempts per item.
	// Default: 2
	MaxAttempts int

	// Delay is the fixed wait between attempts.
	// Default: 2 seconds
	Delay time.Duration
}

// DefaultRetryConfig returns the operation-level retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Second}
}

// DefaultItemRetryConfig returns the item-level retry defaults.
func DefaultItemRetryConfig() ItemRetryConfig {
	return ItemRetryConfig{MaxAttempts: 2, Delay: 2 * time.Second}
}

// RetryOperation runs fn with exponential backoff (delay = BaseDelay x
// 2^(attempt-1)). On exhaustion it returns a NetworkError wrapping the
// last cause and opContext. Validation errors are permanent and returned
// as-is without further attempts. Unlike RetryItem, failure propagates:
// this guards a whole multi-date search, not an individual date.
func RetryOperation[R any](ctx context.Context, cfg RetryConfig, opContext string, fn func(context.Context) (R, error)) (R, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = cfg.BaseDelay * time.Duration(1<<uint(cfg.MaxAttempts))
	bo.MaxElapsedTime = 0 // attempts are bounded by WithMaxRetries

	var result R
	attempts := 0

	operation := func() error {
		attempts++
		r, err := fn(ctx)
		if err != nil {
			if IsValidation(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.MaxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		var zero R
		if IsValidation(err) {
			return zero, err
		}
		return zero, &NetworkError{Context: opContext, Attempts: attempts, Err: err}
	}
	return result, nil
}

// RetryItem runs fn up to cfg.MaxAttempts times with a constant delay.
// On final failure it logs the item and returns the error wrapped with
// the item label; it never panics the surrounding batch. The batch
// executor converts the returned error into a soft per-item failure, so
// one bad date leaves the rest of the batch unaffected.
func RetryItem[R any](ctx context.Context, cfg ItemRetryConfig, label string, logger zerolog.Logger, fn func(context.Context) (R, error)) (R, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}

	var result R
	attempts := 0

	operation := func() error {
		attempts++
		r, err := fn(ctx)
		if err != nil {
			logger.Debug().
				Str("item", label).
				Int("attempt", attempts).
				Err(err).
				Msg("item attempt failed")
			return err
		}
		result = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Delay), uint64(cfg.MaxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		logger.Warn().
			Str("item", label).
			Int("attempts", attempts).
			Err(err).
			Msg("giving up on item")
		var zero R
		return zero, fmt.Errorf("%s: %w", label, err)
	}
	return result, nil
}

// WithTimeout races fn against a deadline. If the timer wins, a
// NetworkError wrapping ErrTimeout is returned and the operation's
// eventual completion is silently discarded. The underlying operation is
// NOT cancelled; in-flight remote calls may still complete afterwards.
func WithTimeout[R any](ctx context.Context, timeout time.Duration, opContext string, fn func(context.Context) (R, error)) (R, error) {
	type settled struct {
		result R
		err    error
	}

	// Buffered so the abandoned goroutine can finish and be collected.
	done := make(chan settled, 1)
	go func() {
		r, err := fn(ctx)
		done <- settled{result: r, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero R
	select {
	case s := <-done:
		return s.result, s.err
	case <-timer.C:
		return zero, &NetworkError{
			Context: opContext,
			Err:     fmt.Errorf("%w after %s", ErrTimeout, timeout),
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
