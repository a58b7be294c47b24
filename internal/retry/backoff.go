// Package retry runs operations with exponential backoff and jitter.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffConfig holds the delay schedule parameters.
type BackoffConfig struct {
	BaseDelay time.Duration
	Factor    float64
	MaxDelay  time.Duration
}

// Delay computes the wait before the next attempt. attempt is zero-indexed:
// the first retry uses exponent 0. The schedule is
// min(BaseDelay*Factor^attempt, MaxDelay) plus 10-30% jitter. Jitter is only
// ever added, so the result may exceed MaxDelay by up to 30%; concurrent
// retries must not land on the same instant.
func Delay(attempt int, cfg BackoffConfig) time.Duration {
	raw := float64(cfg.BaseDelay) * math.Pow(cfg.Factor, float64(attempt))
	if raw > float64(cfg.MaxDelay) {
		raw = float64(cfg.MaxDelay)
	}

	jitter := raw * (0.1 + 0.2*rand.Float64())

	return time.Duration(raw + jitter)
}
