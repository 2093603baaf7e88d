// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the governance API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for REST API latencies,
// ranging from 1ms to 10s.
var APIBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "governance_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method"},
	)

	// AuthAttemptsTotal counts authentication attempts by credential scheme
	// and outcome (authenticated, denied, error).
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_auth_attempts_total",
			Help: "Authentication attempts",
		},
		[]string{"scheme", "outcome"},
	)

	// TenantLookupsTotal counts tenant domain resolutions by result
	// (found, unknown, error).
	TenantLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_tenant_lookups_total",
			Help: "Tenant domain lookups",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthAttemptsTotal,
		TenantLookupsTotal,
	)
}
