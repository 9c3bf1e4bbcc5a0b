/*
Package limiter provides a leaky bucket admission limiter with suspending
acquisition.

The bucket fills by the requested amount on every admission and drains
continuously at MaxRate units per Period. Bursting up to the full capacity is
allowed. Capacity is never handed back; it only drains over time.

Basic usage:

	lim := limiter.New(10, time.Minute) // 10 units per minute

	for _, job := range jobs {
		if err := lim.Acquire(ctx); err != nil {
			return err
		}
		process(job)
	}

Non-blocking probe:

	if lim.HasCapacity() {
		// an immediate Acquire would succeed
	}

Waiter ordering:

When the bucket is full, Acquire suspends the caller and queues a waiter.
Waiters are ordered by requested amount first and arrival order second, so a
later request for a smaller amount is granted as soon as enough capacity has
drained for it, even if a larger request has been waiting longer. This is a
deliberate policy that maximizes throughput of small requests; strict FIFO is
not provided.

Wake-ups are timer driven, not polled: after every state change the limiter
computes the earliest instant its front waiter could fit and arms a single
timer for that instant.

Cancellation:

Canceling the context of a suspended Acquire fails that call with ctx.Err().
The queue entry is left behind and purged when it reaches the front; it never
delays other waiters. A canceled entry that never reaches the front stays in
memory until it does, so cancellation-heavy workloads that also keep the
bucket saturated can accumulate stale entries.

Schedulers:

Time and wake timers come from a pkg/scheduler.Scheduler. Production use
needs no configuration: the limiter binds to scheduler.System. Simulations
and tests bind a scheduler.Virtual via Config.Scheduler or the context
carrier. A limiter must stay on the scheduler it bound: if its scheduler is
stopped and the limiter is used again, it recovers by rebinding to the
caller's scheduler, abandoning any queued waiters (they never complete), and
logging a warning through Config.Logger. That path is damage control for a
misuse, not a supported mode.

Metrics:

NewWithMetrics and NewWithConfigAndMetrics wrap the limiter with Prometheus
instrumentation; see pkg/metrics for the exported families.
*/
package limiter
