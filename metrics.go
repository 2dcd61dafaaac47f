package crate

import (
	"context"

	metrics "github.com/rcrowley/go-metrics"
)

const (
	// MetricResolveRequests counts every resolve attempt, recursive ones included.
	MetricResolveRequests = "crate.resolve.requests"
	// MetricResolveFailures counts resolve attempts that returned an error.
	MetricResolveFailures = "crate.resolve.failures"
	// metricServicePrefix prefixes the per-service request counters.
	metricServicePrefix = "crate.resolve."
)

// metricsMiddleware maintains resolution counters.
type metricsMiddleware struct {
	registry metrics.Registry
	requests metrics.Counter
	failures metrics.Counter
}

// NewMetricsMiddleware returns middleware counting resolutions into registry.
// A nil registry uses metrics.DefaultRegistry.
func NewMetricsMiddleware(registry metrics.Registry) Middleware {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	return &metricsMiddleware{
		registry: registry,
		requests: metrics.GetOrRegisterCounter(MetricResolveRequests, registry),
		failures: metrics.GetOrRegisterCounter(MetricResolveFailures, registry),
	}
}

// BeforeResolve implements Middleware.
func (m *metricsMiddleware) BeforeResolve(_ context.Context, service Type) error {
	m.requests.Inc(1)
	metrics.GetOrRegisterCounter(ServiceMetricName(service), m.registry).Inc(1)
	return nil
}

// AfterResolve implements Middleware.
func (m *metricsMiddleware) AfterResolve(_ context.Context, _ Type, _ any, err error) error {
	if err != nil {
		m.failures.Inc(1)
	}
	return nil
}

// ServiceMetricName returns the per-service request counter name.
func ServiceMetricName(service Type) string {
	return metricServicePrefix + service.String()
}
