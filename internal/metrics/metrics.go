// Package metrics exposes the cache's runtime counters and gauges via
// prometheus/client_golang, replacing the teacher's bespoke sqlite-backed
// metrics.Manager (internal/metrics/metrics.go) with a real metrics
// registry, grounded on the dependency style seen across the example pack.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps the collectors the cache core updates directly through
// the cache.Metrics methods below. One Registry is constructed per process
// and passed to the cache; the HTTP layer does not update it. There is no
// background flush loop because client_golang collectors are updated
// synchronously on the hot path.
type Registry struct {
	reg *prometheus.Registry

	UploadsTotal    prometheus.Counter
	DownloadsTotal  prometheus.Counter
	NotFoundTotal   prometheus.Counter
	EvictionsTotal  *prometheus.CounterVec
	ResidentEntries prometheus.Gauge
	ResidentBytes   prometheus.Gauge
	CapacityBytes   prometheus.Gauge
}

// New constructs a Registry with all collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	m := &Registry{
		reg: reg,
		UploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filecached",
			Name:      "uploads_total",
			Help:      "Total number of successful uploads.",
		}),
		DownloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filecached",
			Name:      "downloads_total",
			Help:      "Total number of successful downloads.",
		}),
		NotFoundTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filecached",
			Name:      "not_found_total",
			Help:      "Total number of fetches for an unknown or expired identifier.",
		}),
		EvictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filecached",
			Name:      "evictions_total",
			Help:      "Total number of entries retired, labeled by reason.",
		}, []string{"reason"}),
		ResidentEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "filecached",
			Name:      "resident_entries",
			Help:      "Number of entries currently held in the index.",
		}),
		ResidentBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "filecached",
			Name:      "resident_bytes",
			Help:      "Current resident-body byte total reserved from the memory budget.",
		}),
		CapacityBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "filecached",
			Name:      "accountant_capacity_bytes",
			Help:      "Configured resident-body byte capacity.",
		}),
	}

	reg.MustRegister(
		m.UploadsTotal,
		m.DownloadsTotal,
		m.NotFoundTotal,
		m.EvictionsTotal,
		m.ResidentEntries,
		m.ResidentBytes,
		m.CapacityBytes,
	)

	return m
}

// Handler returns the HTTP handler that serves the registry in the
// Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// The methods below implement cache.Metrics, letting a *Registry be passed
// straight to cache.WithMetrics without the cache package importing
// prometheus.

// IncUploads implements cache.Metrics.
func (m *Registry) IncUploads() { m.UploadsTotal.Inc() }

// IncDownloads implements cache.Metrics.
func (m *Registry) IncDownloads() { m.DownloadsTotal.Inc() }

// IncNotFound implements cache.Metrics.
func (m *Registry) IncNotFound() { m.NotFoundTotal.Inc() }

// IncEviction implements cache.Metrics.
func (m *Registry) IncEviction(reason string) { m.EvictionsTotal.WithLabelValues(reason).Inc() }

// SetResident implements cache.Metrics.
func (m *Registry) SetResident(entries int, bytes int64) {
	m.ResidentEntries.Set(float64(entries))
	m.ResidentBytes.Set(float64(bytes))
}

// SetCapacity records the configured resident-body byte budget; called once
// at startup since it never changes at runtime.
func (m *Registry) SetCapacity(bytes int64) {
	m.CapacityBytes.Set(float64(bytes))
}
