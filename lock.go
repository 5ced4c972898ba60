package limelight

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// RenderLock is the exclusive gate in front of the shared rendering
// backend. Exactly one holder exists at any instant, across every scene
// created from bridges sharing the lock.
//
// The lock is injectable (via [BridgeConfig.Lock]) so tests can substitute
// an instrumented implementation that records acquire/release intervals.
type RenderLock interface {
	// Acquire blocks the caller for up to timeout and reports whether the
	// lock was obtained. A non-positive timeout degenerates to a single
	// non-blocking attempt.
	Acquire(timeout time.Duration) bool

	// Release returns the lock. Must be called exactly once per successful
	// Acquire, on every exit path.
	Release()
}

// renderLock is the default RenderLock: a weighted semaphore of capacity
// one, with context deadlines providing the timed acquisition.
type renderLock struct {
	sem *semaphore.Weighted
}

// NewRenderLock creates the default timed exclusive lock.
func NewRenderLock() RenderLock {
	return &renderLock{sem: semaphore.NewWeighted(1)}
}

func (l *renderLock) Acquire(timeout time.Duration) bool {
	if timeout <= 0 {
		return l.sem.TryAcquire(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.sem.Acquire(ctx, 1) == nil
}

func (l *renderLock) Release() {
	l.sem.Release(1)
}
