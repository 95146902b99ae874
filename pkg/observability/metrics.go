// Package observability provides the Prometheus metrics collector and the
// X-Ray tracing helpers shared across the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the service-wide Prometheus collector.
// A nil *Metrics is valid and records nothing, which keeps tests quiet.
type Metrics struct {
	searchDuration  *prometheus.HistogramVec
	searchResults   *prometheus.HistogramVec
	searchTotal     *prometheus.CounterVec
	purchaseTotal   *prometheus.CounterVec
	purchaseLatency prometheus.Histogram
	networkVersion  prometheus.Gauge
	networkNodes    prometheus.Gauge
}

// NewMetrics creates the collector and registers it with the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "supplynet",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Path search latency by algorithm",
			Buckets:   prometheus.DefBuckets,
		}, []string{"algorithm"}),
		searchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "supplynet",
			Subsystem: "search",
			Name:      "result_count",
			Help:      "Number of candidate paths returned per search",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}, []string{"algorithm"}),
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplynet",
			Subsystem: "search",
			Name:      "total",
			Help:      "Path searches by algorithm and outcome",
		}, []string{"algorithm", "outcome"}),
		purchaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplynet",
			Subsystem: "purchase",
			Name:      "total",
			Help:      "Intelligent purchases by outcome",
		}, []string{"outcome"}),
		purchaseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supplynet",
			Subsystem: "purchase",
			Name:      "duration_seconds",
			Help:      "End-to-end intelligent purchase latency",
			Buckets:   prometheus.DefBuckets,
		}),
		networkVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supplynet",
			Subsystem: "network",
			Name:      "snapshot_version",
			Help:      "Version of the published network snapshot",
		}),
		networkNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supplynet",
			Subsystem: "network",
			Name:      "nodes",
			Help:      "Node count of the published network snapshot",
		}),
	}

	reg.MustRegister(
		m.searchDuration,
		m.searchResults,
		m.searchTotal,
		m.purchaseTotal,
		m.purchaseLatency,
		m.networkVersion,
		m.networkNodes,
	)
	return m
}

// ObserveSearch records one path search
func (m *Metrics) ObserveSearch(algorithm string, duration time.Duration, resultCount int, outcome string) {
	if m == nil {
		return
	}
	m.searchDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	m.searchResults.WithLabelValues(algorithm).Observe(float64(resultCount))
	m.searchTotal.WithLabelValues(algorithm, outcome).Inc()
}

// ObservePurchase records one intelligent purchase attempt
func (m *Metrics) ObservePurchase(duration time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.purchaseLatency.Observe(duration.Seconds())
	m.purchaseTotal.WithLabelValues(outcome).Inc()
}

// SetNetworkSnapshot records the published snapshot's version and size
func (m *Metrics) SetNetworkSnapshot(version int64, nodeCount int) {
	if m == nil {
		return
	}
	m.networkVersion.Set(float64(version))
	m.networkNodes.Set(float64(nodeCount))
}
