package fdsn

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fdsn_client_requests_total",
			Help: "Total FDSN web-service requests by service and outcome",
		},
		[]string{"provider", "service", "outcome"},
	)

	retriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fdsn_client_retries_total",
			Help: "Total FDSN request retry attempts",
		},
		[]string{"provider", "service"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fdsn_circuit_breaker_state",
			Help: "Provider circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(retriesTotal)
	prometheus.MustRegister(breakerState)
}

func recordRequest(provider, service, outcome string) {
	requestsTotal.WithLabelValues(provider, service, outcome).Inc()
}

func recordRetry(provider, service string) {
	retriesTotal.WithLabelValues(provider, service).Inc()
}

// BreakerMetricsCallback returns a state-change callback that mirrors breaker
// state into Prometheus, suitable for CircuitBreakerConfig.OnStateChange.
func BreakerMetricsCallback() func(string, CircuitBreakerState, CircuitBreakerState) {
	return func(name string, _, to CircuitBreakerState) {
		breakerState.WithLabelValues(name).Set(float64(to))
	}
}
