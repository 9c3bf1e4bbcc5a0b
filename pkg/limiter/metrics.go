package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	dlerrors "github.com/vnykmshr/driplimit/pkg/common/errors"
	"github.com/vnykmshr/driplimit/pkg/metrics"
)

const limiterType = "leaky"

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a new leaky bucket limiter with metrics enabled.
func NewWithMetrics(maxRate float64, period time.Duration, name string) Limiter {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{
		MaxRate:      maxRate,
		Period:       period,
		InitialLevel: -1,
	}, name, config)
}

// NewWithConfigAndMetrics creates a new leaky bucket limiter with custom
// config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) Limiter {
	baseLimiter := NewWithConfig(config)

	if !metricsConfig.Enabled {
		return baseLimiter
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return &MetricsLimiter{
		limiter:  baseLimiter,
		name:     name,
		registry: registry,
		enabled:  true,
	}
}

// HasCapacity reports whether one unit could be admitted now.
func (ml *MetricsLimiter) HasCapacity() bool {
	return ml.HasCapacityN(1)
}

// HasCapacityN reports whether amount units could be admitted now.
func (ml *MetricsLimiter) HasCapacityN(amount float64) bool {
	ok := ml.limiter.HasCapacityN(amount)
	ml.observeState()
	return ok
}

// Acquire admits one unit, suspending until enough capacity has drained.
func (ml *MetricsLimiter) Acquire(ctx context.Context) error {
	return ml.AcquireN(ctx, 1)
}

// AcquireN admits amount units, suspending until enough capacity has drained.
func (ml *MetricsLimiter) AcquireN(ctx context.Context, amount float64) error {
	start := time.Now()

	if ml.enabled {
		ml.registry.AcquireRequests.WithLabelValues(limiterType, ml.name).Add(amount)
	}

	err := ml.limiter.AcquireN(ctx, amount)

	if ml.enabled {
		duration := time.Since(start)
		ml.registry.AcquireWaitTime.WithLabelValues(limiterType, ml.name).Observe(duration.Seconds())

		switch {
		case err == nil:
			ml.registry.AcquireGranted.WithLabelValues(limiterType, ml.name).Add(amount)
		case errors.Is(err, dlerrors.ErrCapacityExceeded):
			ml.registry.AcquireRejected.WithLabelValues(limiterType, ml.name).Add(amount)
		default:
			ml.registry.AcquireCancelled.WithLabelValues(limiterType, ml.name).Add(amount)
		}
		ml.observeState()
	}

	return err
}

// Do acquires one unit and then runs fn.
func (ml *MetricsLimiter) Do(ctx context.Context, fn func() error) error {
	if err := ml.Acquire(ctx); err != nil {
		return err
	}
	return fn()
}

// MaxRate returns the capacity ceiling.
func (ml *MetricsLimiter) MaxRate() float64 { return ml.limiter.MaxRate() }

// TimePeriod returns the period over which MaxRate units drain.
func (ml *MetricsLimiter) TimePeriod() time.Duration { return ml.limiter.TimePeriod() }

// Level returns the current fill level of the bucket.
func (ml *MetricsLimiter) Level() float64 { return ml.limiter.Level() }

// Waiting returns the number of entries in the waiter queue.
func (ml *MetricsLimiter) Waiting() int { return ml.limiter.Waiting() }

// Rebinds returns how many times the limiter has rebound schedulers.
func (ml *MetricsLimiter) Rebinds() uint64 { return ml.limiter.Rebinds() }

// String describes the limiter's configuration and current state.
func (ml *MetricsLimiter) String() string { return ml.limiter.String() }

func (ml *MetricsLimiter) observeState() {
	if !ml.enabled {
		return
	}
	ml.registry.BucketLevel.WithLabelValues(limiterType, ml.name).Set(ml.limiter.Level())
	ml.registry.Waiting.WithLabelValues(limiterType, ml.name).Set(float64(ml.limiter.Waiting()))
	ml.registry.SchedulerRebinds.WithLabelValues(limiterType, ml.name).Set(float64(ml.limiter.Rebinds()))
}
