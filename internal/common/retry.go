package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ledgerflow/internal/service"
)

var (
	// ErrRateLimit indicates that the API rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError marks an error as worth retrying or not.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Defaults applied to zero-valued RetryOptions fields.
const (
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 100 * time.Millisecond
	defaultRetryMaxDelay   = 30 * time.Second
	defaultRetryMultiplier = 2.0
)

func withRetryDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultRetryAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultRetryDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultRetryMaxDelay
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = defaultRetryMultiplier
	}
	if opts.Operation == "" {
		opts.Operation = "operation"
	}
	return opts
}

// WithRetry runs operation until it succeeds, returns an error explicitly
// marked non-retryable, or exhausts opts.MaxAttempts. Delays grow by
// opts.Multiplier up to opts.MaxDelay; a rate-limit error waits the full
// MaxDelay before the next attempt.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = withRetryDefaults(opts)
	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation()
		if err == nil {
			return nil
		}

		var retryableErr *RetryableError
		if errors.As(err, &retryableErr) && !retryableErr.Retryable {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %v", opts.Operation, ErrMaxRetries, attempt, err)
		}

		wait := delay
		if errors.Is(err, ErrRateLimit) {
			wait = opts.MaxDelay
		}
		slog.Warn("retrying after failure",
			"operation", opts.Operation,
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", wait,
			"error", err)

		if err := sleep(ctx, wait); err != nil {
			return err
		}
		delay = min(time.Duration(float64(delay)*opts.Multiplier), opts.MaxDelay)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
