package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Example_basicUsage demonstrates basic metrics registry usage.
func Example_basicUsage() {
	// Create a separate registry for this test
	testRegistry := prometheus.NewRegistry()
	registry := NewRegistry(testRegistry)

	// Example of accessing metrics
	registry.AcquireRequests.WithLabelValues("leaky", "api").Add(10)
	registry.AcquireGranted.WithLabelValues("leaky", "api").Add(8)
	registry.AcquireRejected.WithLabelValues("leaky", "api").Add(2)

	fmt.Println("Metrics updated successfully")

	// Output:
	// Metrics updated successfully
}

// Example_customRegistry demonstrates using a custom Prometheus registry.
func Example_customRegistry() {
	customRegistry := prometheus.NewRegistry()

	config := Config{
		Enabled:  true,
		Registry: customRegistry,
	}

	registry := NewRegistry(config.Registry)
	registry.BucketLevel.WithLabelValues("leaky", "writes").Set(3)
	registry.Waiting.WithLabelValues("leaky", "writes").Set(2)

	fmt.Printf("Custom registry enabled: %v\n", config.Enabled)

	// Output:
	// Custom registry enabled: true
}

// Example_metricsServer demonstrates setting up a metrics HTTP server.
func Example_metricsServer() {
	// In a real application, you would start a metrics server:
	//
	// http.Handle("/metrics", promhttp.Handler())
	// log.Fatal(http.ListenAndServe(":8080", nil))
	//
	// Available metrics would include:
	// - driplimit_admission_requests_total{limiter_type="leaky",limiter_name="api"}
	// - driplimit_admission_granted_total{limiter_type="leaky",limiter_name="api"}
	// - driplimit_admission_bucket_level{limiter_type="leaky",limiter_name="api"}

	fmt.Println("Metrics available at /metrics endpoint")

	// Output:
	// Metrics available at /metrics endpoint
}
