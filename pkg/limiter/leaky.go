package limiter

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vnykmshr/driplimit/pkg/scheduler"
)

// HasCapacity reports whether one unit could be admitted now.
func (l *leakyBucket) HasCapacity() bool {
	return l.HasCapacityN(1)
}

// HasCapacityN reports whether amount units could be admitted now.
func (l *leakyBucket) HasCapacityN(amount float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.bindLocked(scheduler.System)
	l.leakLocked()
	return l.level+amount <= l.maxRate
}

// Acquire admits one unit, suspending until enough capacity has drained.
func (l *leakyBucket) Acquire(ctx context.Context) error {
	return l.AcquireN(ctx, 1)
}

// AcquireN admits amount units, suspending until enough capacity has drained.
//
// Waiters are served in (amount, enqueue order) order, so a smaller request
// arriving later can be granted before an earlier, larger one. Canceling a
// waiting call leaves its queue entry behind; the entry is purged once it
// reaches the front of the queue, and never delays other waiters.
func (l *leakyBucket) AcquireN(ctx context.Context, amount float64) error {
	if amount > l.maxRate {
		return ErrAmountTooLarge
	}
	if amount <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	l.bindLocked(scheduler.FromContext(ctx))
	l.leakLocked()
	if l.level+amount <= l.maxRate {
		l.level += amount
		// the higher level may push the pending wake further out
		l.scheduleLocked()
		l.mu.Unlock()
		return nil
	}

	w := &waiter{amount: amount, seq: l.nextSeq, done: make(chan struct{})}
	l.nextSeq++
	heap.Push(&l.waiters, w)
	l.scheduleLocked()
	l.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		if w.granted {
			// the grant won the race; the capacity is already accounted
			l.mu.Unlock()
			return nil
		}
		w.cancelled = true
		l.scheduleLocked()
		l.mu.Unlock()
		return ctx.Err()
	}
}

// Do acquires one unit and then runs fn. Nothing is released on return.
func (l *leakyBucket) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	return fn()
}

// String describes the limiter's configuration and current state.
func (l *leakyBucket) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprintf("Limiter(max_rate=%g, period=%s) level=%.3f waiters=%d",
		l.maxRate, l.period, l.level, l.waiters.Len())
}

// leakLocked drains the bucket for the time elapsed since the last check.
// last_check is always refreshed, even when the level is already zero, so
// elapsed time never accumulates across idle stretches. Callers must hold
// l.mu with the limiter bound to a scheduler.
func (l *leakyBucket) leakLocked() {
	now := l.sched.Now()
	if l.level > 0 {
		if elapsed := now.Sub(l.lastCheck); elapsed > 0 {
			l.level = math.Max(l.level-elapsed.Seconds()*l.ratePerSec, 0)
		}
	}
	l.lastCheck = now
}

// scheduleLocked is the scheduling pass. It disarms the stale waker, purges
// canceled entries from the front of the queue, grants every waiter the
// drained level can admit in queue order, and arms a single timer for the
// earliest instant the front waiter could fit. Each grant is accounted
// against the level before the next front entry is evaluated. Callers must
// hold l.mu.
func (l *leakyBucket) scheduleLocked() {
	if l.waker != nil {
		l.waker.Stop()
		l.waker = nil
	}
	for {
		for l.waiters.Len() > 0 && l.waiters.peek().cancelled {
			heap.Pop(&l.waiters)
		}
		if l.waiters.Len() == 0 {
			return
		}

		w := l.waiters.peek()
		l.leakLocked()
		needed := w.amount - l.maxRate + l.level
		if needed <= 0 {
			heap.Pop(&l.waiters)
			l.level += w.amount
			w.granted = true
			close(w.done)
			continue
		}

		// round up: truncation would fire the timer a nanosecond early,
		// leaving a residue too small to drain and re-arming a zero-duration
		// timer at the same instant
		d := time.Duration(math.Ceil(needed / l.ratePerSec * float64(time.Second)))
		l.waker = l.sched.AfterFunc(d, l.wake)
		return
	}
}

// wake re-runs the scheduling pass when the waker fires. A stale or early
// fire is a no-op re-check; the pass recomputes the wake instant from
// scratch.
func (l *leakyBucket) wake() {
	l.mu.Lock()
	l.scheduleLocked()
	l.mu.Unlock()
}

// bindLocked binds the limiter to its scheduler on first use and guards
// against reuse across scheduler instances. If the bound scheduler has been
// stopped, the limiter rebinds to current, disarms the stale waker, and
// abandons every queued waiter: their channels are never resolved, since the
// timers that would have woken them are gone. Behavior before the rebind is
// unsupported; a warning is logged. Callers must hold l.mu.
func (l *leakyBucket) bindLocked(current scheduler.Scheduler) {
	if l.sched == nil {
		l.sched = current
		l.lastCheck = current.Now()
		return
	}
	if l.sched == current || !l.sched.Stopped() {
		return
	}

	abandoned := l.waiters.Len()
	if l.waker != nil {
		l.waker.Stop()
		l.waker = nil
	}
	l.waiters = nil
	l.sched = current
	l.lastCheck = current.Now()
	l.rebinds++
	l.logger.Warn().
		Int("abandoned_waiters", abandoned).
		Float64("level", l.level).
		Msg("limiter reused across scheduler instances; waiters bound to the stopped scheduler were abandoned")
}
