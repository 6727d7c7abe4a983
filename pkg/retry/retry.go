// Package retry wraps an operation with a bounded retry budget and
// linear backoff: after the n-th failed attempt the executor sleeps
// baseDelay × n before trying again. Backoff sleeps are interruptible
// through the context.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Executor runs operations with a fixed retry budget.
type Executor struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      zerolog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for per-attempt warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithSleep injects the backoff sleep. Tests use this to record the
// delay schedule without waiting it out.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// New creates an Executor. maxAttempts counts the first attempt, so
// maxAttempts=3 means at most two retries.
func New(maxAttempts int, baseDelay time.Duration, opts ...Option) *Executor {
	e := &Executor{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      zerolog.Nop(),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do runs op until it succeeds, the budget is exhausted, or ctx is
// canceled. Every failed attempt is logged as a warning. The last
// error is returned once the budget runs out; a canceled context
// returns ctx.Err().
func (e *Executor) Do(ctx context.Context, name string, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		e.logger.Warn().
			Err(lastErr).
			Str("operation", name).
			Int("attempt", attempt).
			Int("max_attempts", e.maxAttempts).
			Msg("attempt failed")

		if attempt < e.maxAttempts {
			if err := e.sleep(ctx, e.baseDelay*time.Duration(attempt)); err != nil {
				return err
			}
		}
	}

	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
