package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Checkout redirect outcomes (end of the process endpoint)
	checkoutOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctechpay_checkout_outcomes_total",
		Help: "Total checkout redirect attempts by outcome",
	}, []string{
		"outcome", // redirected, invalid, lookup_failed, gateway_failed, no_redirect
	})

	checkoutDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "ctechpay_checkout_duration_seconds",
		Help: "Time from process request to redirect decision",
		// Buckets: 50ms to 60s (two gateway attempts at most)
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{
		"outcome",
	})

	// Gateway order requests, one observation per attempt
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctechpay_gateway_requests_total",
		Help: "Total order requests sent to the CTechPay gateway",
	}, []string{
		"attempt", // multipart, urlencoded
		"status",  // HTTP status code, or "network_error"
	})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ctechpay_gateway_request_duration_seconds",
		Help:    "Duration of order requests sent to the CTechPay gateway",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"attempt",
	})

	gatewayCircuitState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ctechpay_gateway_circuit_state",
		Help: "Current state of the gateway circuit breaker (0=closed, 1=half-open, 2=open)",
	})

	// Token bootstrap results per partition
	tokenBootstrapTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctechpay_token_bootstrap_total",
		Help: "Token bootstrap runs by partition and result",
	}, []string{
		"partition",
		"result", // applied, kept, no_token, failed, race_lost
	})
)

// RecordCheckoutOutcome records the result of one process request
func RecordCheckoutOutcome(outcome string, durationSeconds float64) {
	checkoutOutcomesTotal.WithLabelValues(outcome).Inc()
	checkoutDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordGatewayRequest records one order attempt sent to the gateway
func RecordGatewayRequest(attempt, status string, durationSeconds float64) {
	gatewayRequestsTotal.WithLabelValues(attempt, status).Inc()
	gatewayRequestDuration.WithLabelValues(attempt).Observe(durationSeconds)
}

// SetGatewayCircuitState publishes the circuit breaker state as a gauge value
func SetGatewayCircuitState(state float64) {
	gatewayCircuitState.Set(state)
}

// RecordTokenBootstrap records the result of a token bootstrap run
func RecordTokenBootstrap(partition, result string) {
	tokenBootstrapTotal.WithLabelValues(partition, result).Inc()
}
