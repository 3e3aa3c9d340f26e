// Package metrics exposes the prometheus collectors the gateway serves at
// /metrics: RPC dispatch latency, matching-pass duration, and queue depth.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "exchange",
		Subsystem: "rpc",
		Name:      "dispatch_duration_seconds",
		Help:      "Time spent executing one RPC method end to end.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "outcome"})

	MatchingPassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "exchange",
		Subsystem: "orders",
		Name:      "matching_pass_duration_seconds",
		Help:      "Time spent running one execute_orders pass for an instrument.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"ticker"})

	// QueueDepth is registered but no code in this module sets it, so it
	// reports no samples.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "exchange",
		Subsystem: "rpc",
		Name:      "queue_depth",
		Help:      "Number of jobs currently queued per service.",
	}, []string{"service"})
)
