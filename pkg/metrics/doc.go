// Package metrics provides Prometheus instrumentation for driplimit limiters.
//
// # Overview
//
// The metrics package provides automatic instrumentation for admission
// operations:
//   - Admission requests (requested, granted, rejected, cancelled units)
//   - Wait times for suspended acquisitions
//   - Bucket state (fill level, queued waiters, scheduler rebinds)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	lim := limiter.NewWithMetrics(100, time.Minute, "api_requests")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	lim := limiter.NewWithConfigAndMetrics(
//		limiter.Config{MaxRate: 100, Period: time.Minute},
//		"custom_limiter",
//		config,
//	)
//
// # Available Metrics
//
//   - driplimit_admission_requests_total: Total number of units requested for admission
//   - driplimit_admission_granted_total: Total number of units admitted
//   - driplimit_admission_rejected_total: Total number of units rejected for exceeding capacity
//   - driplimit_admission_cancelled_total: Total number of units whose acquisition was canceled
//   - driplimit_admission_wait_duration_seconds: Time spent suspended waiting for admission
//   - driplimit_admission_bucket_level: Current fill level of the bucket
//   - driplimit_admission_waiters: Number of entries in the waiter queue
//   - driplimit_admission_scheduler_rebinds: Number of times the limiter rebound to a new scheduler
//
// # Labels
//
// Metrics include relevant labels for filtering and aggregation:
//
//   - limiter_type: "leaky"
//   - limiter_name: User-provided name for the limiter instance
//
// # Configuration
//
// Metrics can be configured per-limiter:
//
//	config := metrics.Config{
//		Enabled:  true,                         // Enable/disable metrics
//		Registry: prometheus.DefaultRegisterer, // Custom registry
//	}
//
// # Performance
//
// Metrics collection is designed for minimal overhead:
//   - Metrics are updated only when operations occur
//   - No background goroutines or timers
//   - Conditional metrics updates based on enabled state
package metrics
