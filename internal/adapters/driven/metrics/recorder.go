// Package metrics implements driven.MetricsRecorder with Prometheus.
//
// Exposed series:
//   - imgscout_searches_issued_total
//   - imgscout_searches_completed_total{code}
//   - imgscout_search_duration_seconds{code}
//   - imgscout_storage_tasks_total{op,status}
//   - imgscout_storage_queue_depth
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Recorder records repository activity as Prometheus metrics.
type Recorder struct {
	registry *prometheus.Registry

	searchesIssued    prometheus.Counter
	searchesCompleted *prometheus.CounterVec
	searchDuration    *prometheus.HistogramVec
	storageTasks      *prometheus.CounterVec
	queueDepth        prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		searchesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "imgscout_searches_issued_total",
			Help: "Searches accepted by the repository.",
		}),
		searchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "imgscout_searches_completed_total",
			Help: "Searches that reached a terminal event, by error code.",
		}, []string{"code"}),
		searchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imgscout_search_duration_seconds",
			Help:    "Catalog call latency, by error code.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"code"}),
		storageTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "imgscout_storage_tasks_total",
			Help: "Storage tasks run by the worker, by operation and status.",
		}, []string{"op", "status"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "imgscout_storage_queue_depth",
			Help: "Storage tasks waiting to run.",
		}),
	}
}

// SearchIssued counts an accepted search.
func (r *Recorder) SearchIssued() {
	r.searchesIssued.Inc()
}

// SearchCompleted counts a terminal search event and observes its latency.
func (r *Recorder) SearchCompleted(code domain.ErrorCode, elapsed time.Duration) {
	label := code.String()
	r.searchesCompleted.WithLabelValues(label).Inc()
	r.searchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// StorageTask counts a completed storage task.
func (r *Recorder) StorageTask(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.storageTasks.WithLabelValues(op, status).Inc()
}

// QueueDepth sets the storage queue gauge.
func (r *Recorder) QueueDepth(n int) {
	r.queueDepth.Set(float64(n))
}

// Handler serves the recorder's metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
