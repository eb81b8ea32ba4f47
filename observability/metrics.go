package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type settlementMetrics struct {
	events      *prometheus.CounterVec
	withdrawals prometheus.Counter
	rpcRequests *prometheus.CounterVec
	rpcLatency  *prometheus.HistogramVec
}

var (
	settlementOnce     sync.Once
	settlementRegistry *settlementMetrics
)

// SettlementMetrics returns the lazily-initialised registry tracking
// settlement activity and RPC handler outcomes.
func SettlementMetrics() *settlementMetrics {
	settlementOnce.Do(func() {
		settlementRegistry = &settlementMetrics{
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "decentrashop",
				Subsystem: "settlement",
				Name:      "events_total",
				Help:      "Total settlement events segmented by event type.",
			}, []string{"type"}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "decentrashop",
				Subsystem: "settlement",
				Name:      "withdrawals_total",
				Help:      "Total completed pull-payment withdrawals.",
			}),
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "decentrashop",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "decentrashop",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			settlementRegistry.events,
			settlementRegistry.withdrawals,
			settlementRegistry.rpcRequests,
			settlementRegistry.rpcLatency,
		)
	})
	return settlementRegistry
}

// RecordEvent counts one settlement event of the given type.
func (m *settlementMetrics) RecordEvent(eventType string) {
	if m == nil || eventType == "" {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

// RecordWithdrawal counts one completed withdrawal.
func (m *settlementMetrics) RecordWithdrawal() {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
}

// RecordRPC counts one JSON-RPC request with its outcome and latency in
// seconds.
func (m *settlementMetrics) RecordRPC(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
	m.rpcLatency.WithLabelValues(method).Observe(seconds)
}
