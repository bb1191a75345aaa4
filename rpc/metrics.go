package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "namechain",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "RPC requests by method and outcome.",
	}, []string{"method", "outcome"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "namechain",
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "RPC request latency by method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

func observeRequest(method, outcome string, seconds float64) {
	rpcRequests.WithLabelValues(method, outcome).Inc()
	rpcDuration.WithLabelValues(method).Observe(seconds)
}
