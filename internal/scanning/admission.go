package scanning

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Admission bounds the number of in-flight connection attempts. A slot is
// handed out as soon as any holder releases one.
type Admission struct {
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewAdmission creates an Admission with the given number of slots.
func NewAdmission(capacity int) *Admission {
	if capacity <= 0 {
		capacity = 1
	}
	return &Admission{sem: semaphore.NewWeighted(int64(capacity))}
}

// Acquire blocks until a slot is free or ctx is done.
func (a *Admission) Acquire(ctx context.Context) error {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	n := a.inFlight.Add(1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return nil
}

// Release returns a slot acquired with Acquire.
func (a *Admission) Release() {
	a.inFlight.Add(-1)
	a.sem.Release(1)
}

// InFlight returns the number of currently held slots.
func (a *Admission) InFlight() int {
	return int(a.inFlight.Load())
}

// Peak returns the highest number of slots held at once.
func (a *Admission) Peak() int {
	return int(a.peak.Load())
}
