package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ExhaustedError is returned when an operation still fails after every
// allowed attempt. It wraps the last error the operation produced.
type ExhaustedError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Label, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Executor retries an operation with exponential backoff. An executor is
// safe for concurrent use; each Do call carries its own attempt state.
type Executor struct {
	maxRetries int
	backoff    BackoffConfig
	log        zerolog.Logger

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor that allows maxRetries retries on top of
// the initial attempt (maxRetries+1 attempts total).
func NewExecutor(maxRetries int, backoff BackoffConfig, log zerolog.Logger) *Executor {
	return &Executor{
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        log,
		sleep:      sleepContext,
	}
}

// Do runs op until it succeeds or the retry budget is spent. On exhaustion it
// returns an *ExhaustedError wrapping the operation's last error. A context
// cancellation during the backoff wait is returned as-is.
func (e *Executor) Do(ctx context.Context, label string, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				e.log.Info().
					Str("operation", label).
					Int("retries", attempt).
					Msgf("%s succeeded after %d retries", label, attempt)
			}
			return nil
		}
		lastErr = err

		if attempt == e.maxRetries {
			break
		}

		delay := Delay(attempt, e.backoff)
		e.log.Warn().
			Str("operation", label).
			Int("attempt", attempt+1).
			Int("max_attempts", e.maxRetries+1).
			Dur("delay", delay).
			Err(err).
			Msgf("%s failed, retrying in %v", label, delay.Round(time.Millisecond))

		if serr := e.sleep(ctx, delay); serr != nil {
			return serr
		}
	}

	return &ExhaustedError{Label: label, Attempts: e.maxRetries + 1, Err: lastErr}
}

// sleepContext waits for d unless the context is cancelled first.
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
