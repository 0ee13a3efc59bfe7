package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Points ledger
	PointsTransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_transfers_total",
			Help: "Committed point movements",
		},
		[]string{"kind", "reason"}, // kind: transfer|credit
	)
	PointsTransfersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_transfers_failed_total",
			Help: "Point movements rejected or rolled back",
		},
		[]string{"code"},
	)

	// Catalog and swaps
	ItemTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_status_transitions_total",
			Help: "Committed item status changes",
		},
		[]string{"to"},
	)
	SwapTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_status_transitions_total",
			Help: "Committed swap request status changes",
		},
		[]string{"to"},
	)

	IdempotentReplaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "idempotent_replays_total",
			Help: "Responses served from the idempotency store",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers every collector with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			PointsTransfersTotal,
			PointsTransfersFailed,
			ItemTransitionsTotal,
			SwapTransitionsTotal,
			IdempotentReplaysTotal,
			WorkerQueueDepth,
		)
	})
}
