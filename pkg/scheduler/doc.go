/*
Package scheduler abstracts the clock and timer source a limiter binds to.

A Scheduler plays the role a cooperative event loop plays in other runtimes:
it owns the notion of "now" and the wake timers that resume suspended
acquisitions. Production code uses System, which is backed by the runtime
clock and never stops. Tests and simulations use Virtual, which only moves
time when Advance is called and fires due timers deterministically.

Binding:

	lim := limiter.NewWithConfig(limiter.Config{
		MaxRate:   5,
		Period:    10 * time.Second,
		Scheduler: scheduler.NewVirtual(time.Time{}),
	})

Callers can also carry a scheduler on the context:

	ctx := scheduler.NewContext(ctx, vs)
	err := lim.Acquire(ctx)

FromContext falls back to System, so context plumbing is only needed when a
non-default scheduler is in play.

Deterministic simulation:

	vs := scheduler.NewVirtual(time.Time{})
	vs.AfterFunc(2*time.Second, func() { fmt.Println("fired") })
	vs.Advance(3 * time.Second) // prints "fired" with Now() at +2s

Stopping a Virtual scheduler discards its pending timers; anything still
waiting on them becomes unreachable. The limiter's affinity guard exists to
recover from exactly that situation.
*/
package scheduler
