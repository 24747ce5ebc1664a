package db

import (
	"context"
	"time"

	"SoundCircle/logger"

	"github.com/cenkalti/backoff/v4"
)

const (
	retryBaseDelay = 20 * time.Millisecond
	retryMaxDelay  = 500 * time.Millisecond
)

// WithRetry runs fn up to attempts times, retrying only while fn fails with
// a retryable store conflict. The last error is returned unchanged.
func WithRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = retryBaseDelay
	eb.MaxInterval = retryMaxDelay
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := fn()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("retrying after store conflict",
			logger.Int("attempt", attempt),
			logger.Int("maxAttempts", attempts),
			logger.Duration("backoff", next),
			logger.ErrorField(err))
	}
	return backoff.RetryNotify(op, b, notify)
}
