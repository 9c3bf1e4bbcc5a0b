package scheduler

import (
	"context"
	"time"
)

// Timer is the handle of a pending wake callback. Stop reports whether the
// call prevented the callback from firing, matching time.Timer semantics.
type Timer interface {
	Stop() bool
}

// Scheduler provides the clock and wake timers a limiter relies on. A
// limiter binds to exactly one Scheduler at a time; see pkg/limiter for the
// rebinding rules when a bound scheduler has been stopped.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// AfterFunc arranges for f to be called once d has elapsed on the
	// scheduler's clock and returns a handle that can cancel it.
	AfterFunc(d time.Duration, f func()) Timer

	// Stopped reports whether the scheduler has been torn down. Timers
	// armed on a stopped scheduler never fire.
	Stopped() bool
}

// System is the process-wide scheduler backed by the runtime clock.
// It never stops.
var System Scheduler = systemScheduler{}

type systemScheduler struct{}

func (systemScheduler) Now() time.Time { return time.Now() }

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{time.AfterFunc(d, f)}
}

func (systemScheduler) Stopped() bool { return false }

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool { return st.t.Stop() }

type ctxKey struct{}

// NewContext returns a context carrying the given scheduler. Operations that
// accept a context use it to discover the caller's scheduler.
func NewContext(ctx context.Context, s Scheduler) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the scheduler carried by ctx, or System if none is set.
func FromContext(ctx context.Context) Scheduler {
	if s, ok := ctx.Value(ctxKey{}).(Scheduler); ok {
		return s
	}
	return System
}
