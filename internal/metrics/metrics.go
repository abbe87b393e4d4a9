// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvestx_offers_created_total",
		Help: "Number of harvest batch offers listed.",
	})

	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvestx_requests_created_total",
		Help: "Number of investment requests filed.",
	})

	RequestsResponded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvestx_requests_responded_total",
		Help: "Number of request decisions, by outcome.",
	}, []string{"outcome"})

	TradesSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvestx_trades_settled_total",
		Help: "Number of trades tokenized after escrow verification.",
	})

	SettlementFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvestx_settlement_failures_total",
		Help: "Settlement attempts that did not tokenize, by reason.",
	}, []string{"reason"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvestx_http_requests_total",
		Help: "HTTP requests served, by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harvestx_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
