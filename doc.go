/*
Package driplimit provides an in-process leaky bucket admission limiter
for Go applications.

Admission Control (pkg/limiter):
  - limiter: Leaky bucket limiter with suspending acquisition, amount-ordered
    waiter scheduling and a single wake timer (no polling)
  - MetricsLimiter: Prometheus instrumentation wrapper

Scheduling (pkg/scheduler):
  - System: process-wide scheduler backed by the runtime clock
  - Virtual: deterministic scheduler for simulation and tests

Configuration (pkg/config):
  - Declarative named limits loaded from YAML

Example usage:

	import (
		"github.com/vnykmshr/driplimit/pkg/limiter"
	)

	lim := limiter.New(10, time.Minute) // 10 units per minute, bursting allowed

	if err := lim.Acquire(ctx); err != nil {
		return err
	}
	// proceed with the unit of work
*/
package driplimit
