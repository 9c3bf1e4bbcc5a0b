package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for driplimit components.
type Registry struct {
	AcquireRequests  *prometheus.CounterVec
	AcquireGranted   *prometheus.CounterVec
	AcquireRejected  *prometheus.CounterVec
	AcquireCancelled *prometheus.CounterVec
	AcquireWaitTime  *prometheus.HistogramVec
	BucketLevel      *prometheus.GaugeVec
	Waiting          *prometheus.GaugeVec
	SchedulerRebinds *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by driplimit components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		AcquireRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "requests_total",
				Help:      "Total number of units requested for admission",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		AcquireGranted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "granted_total",
				Help:      "Total number of units admitted",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		AcquireRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "rejected_total",
				Help:      "Total number of units rejected for exceeding capacity",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		AcquireCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "cancelled_total",
				Help:      "Total number of units whose acquisition was canceled while waiting",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		AcquireWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "wait_duration_seconds",
				Help:      "Time spent suspended waiting for admission",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"limiter_type", "limiter_name"},
		),

		BucketLevel: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "bucket_level",
				Help:      "Current fill level of the bucket",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		Waiting: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "waiters",
				Help:      "Number of entries in the waiter queue",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		SchedulerRebinds: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "driplimit",
				Subsystem: "admission",
				Name:      "scheduler_rebinds",
				Help:      "Number of times the limiter rebound to a new scheduler",
			},
			[]string{"limiter_type", "limiter_name"},
		),
	}
}
