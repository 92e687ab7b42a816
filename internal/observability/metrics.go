package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "recipestore"

// Metrics holds the Prometheus collectors for request handling and dataset I/O.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	rowsReturned prometheus.Histogram
	storeOps     *prometheus.CounterVec
	tableRows    prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Requests handled, by operation and envelope status code.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		rowsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "find_rows_returned",
			Help:      "Rows returned per find request.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_operations_total",
			Help:      "Dataset loads and saves by outcome.",
		}, []string{"operation", "result"}),
		tableRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_rows",
			Help:      "Rows in the most recently loaded or saved recipe table.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.rowsReturned,
		m.storeOps,
		m.tableRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveRowsReturned records the size of a find result.
func (m *Metrics) ObserveRowsReturned(n int) {
	if m == nil {
		return
	}
	m.rowsReturned.Observe(float64(n))
}

// ObserveDatasetOp records a dataset load or save and the table size on success.
func (m *Metrics) ObserveDatasetOp(operation string, rows int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.tableRows.Set(float64(rows))
	}
	m.storeOps.WithLabelValues(operation, result).Inc()
}
