// Package metrics holds the Prometheus collectors of the service. They are
// registered on the default registry and served by the go-zero dev server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ethverify",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total chain RPC calls by outcome",
	}, []string{"chain", "method", "status"})

	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ethverify",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Total RPC calls delayed by the per-chain rate limiter",
	}, []string{"chain"})

	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ethverify",
		Subsystem: "verify",
		Name:      "requests_total",
		Help:      "Total verification requests by kind and final state",
	}, []string{"chain", "kind", "state"})

	WaitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ethverify",
		Subsystem: "verify",
		Name:      "wait_duration_seconds",
		Help:      "Time spent waiting for a transaction to settle",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"chain", "kind"})
)
