package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayJitterBounds(t *testing.T) {
	cfg := BackoffConfig{
		BaseDelay: 100 * time.Millisecond,
		Factor:    2.0,
		MaxDelay:  30 * time.Second,
	}

	// attempt is zero-indexed: the first retry uses exponent 0.
	for attempt, raw := range map[int]time.Duration{
		0: 100 * time.Millisecond,
		1: 200 * time.Millisecond,
		2: 400 * time.Millisecond,
	} {
		for i := 0; i < 50; i++ {
			d := Delay(attempt, cfg)
			assert.GreaterOrEqual(t, d, time.Duration(float64(raw)*1.1), "attempt %d", attempt)
			assert.LessOrEqual(t, d, time.Duration(float64(raw)*1.3), "attempt %d", attempt)
		}
	}
}

func TestDelayGrowsWithAttempts(t *testing.T) {
	cfg := BackoffConfig{
		BaseDelay: 50 * time.Millisecond,
		Factor:    2.0,
		MaxDelay:  time.Hour,
	}

	// With factor 2 the jitter bands of consecutive attempts cannot
	// overlap, so every later delay is strictly larger.
	prev := Delay(0, cfg)
	for attempt := 1; attempt < 6; attempt++ {
		d := Delay(attempt, cfg)
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestDelayCappedAtMax(t *testing.T) {
	cfg := BackoffConfig{
		BaseDelay: 100 * time.Millisecond,
		Factor:    10.0,
		MaxDelay:  200 * time.Millisecond,
	}

	// Jitter is added on top of the cap, so the ceiling is MaxDelay*1.3.
	for attempt := 0; attempt < 8; attempt++ {
		d := Delay(attempt, cfg)
		assert.LessOrEqual(t, d, time.Duration(float64(cfg.MaxDelay)*1.3))
	}
}

func TestDelayVariesAcrossCalls(t *testing.T) {
	cfg := BackoffConfig{
		BaseDelay: time.Second,
		Factor:    2.0,
		MaxDelay:  time.Minute,
	}

	seen := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		seen[Delay(0, cfg)] = true
	}
	assert.Greater(t, len(seen), 1, "jitter should vary delays")
}
