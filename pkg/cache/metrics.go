package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// instrumentation holds the Prometheus collectors for one cache instance
type instrumentation struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	sets      prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
	memory    prometheus.Gauge
}

// WithMetrics exposes the cache's statistics as Prometheus metrics under
// the given namespace, labeled with the instance name. A nil registerer
// disables export.
func WithMetrics[V any](reg prometheus.Registerer, namespace, instance string) Option[V] {
	return func(o *options[V]) {
		if reg == nil || instance == "" {
			return
		}
		labels := prometheus.Labels{"instance": instance}
		m := &instrumentation{
			hits: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "cache",
				Name:        "hits_total",
				Help:        "Total number of cache hits",
				ConstLabels: labels,
			}),
			misses: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "cache",
				Name:        "misses_total",
				Help:        "Total number of cache misses",
				ConstLabels: labels,
			}),
			sets: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "cache",
				Name:        "sets_total",
				Help:        "Total number of cache inserts",
				ConstLabels: labels,
			}),
			evictions: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "cache",
				Name:        "evictions_total",
				Help:        "Total number of policy evictions",
				ConstLabels: labels,
			}),
			size: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "cache",
				Name:        "entries",
				Help:        "Current number of cache entries",
				ConstLabels: labels,
			}),
			memory: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "cache",
				Name:        "memory_bytes",
				Help:        "Estimated cache memory usage in bytes",
				ConstLabels: labels,
			}),
		}
		reg.MustRegister(m.hits, m.misses, m.sets, m.evictions, m.size, m.memory)
		o.metrics = m
	}
}
