package pipeline

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pauser abstracts the pipeline's pacing delays so tests can skip them.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// TimerPauser waits on a real timer, bailing early if the context ends.
type TimerPauser struct{}

// Pause blocks for delay or until ctx finishes.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// NoopPauser skips all delays. Used in tests.
type NoopPauser struct{}

// Pause returns immediately.
func (NoopPauser) Pause(context.Context, time.Duration) {}

// RandomDelay picks a uniform duration in [min, max]. Used for the
// anti-detection courtesy delays; not correctness-critical.
func RandomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}
