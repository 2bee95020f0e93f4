// Package metrics exposes Prometheus instrumentation for ingest, query and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics on its own registry.
// All Record methods are safe to call on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ingestTotal    *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec
	chunksIndexed  *prometheus.CounterVec

	queryTotal    *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryResults  *prometheus.HistogramVec
}

// NewCollector creates a collector whose metrics are prefixed with namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ingestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_documents_total",
				Help:      "Total number of document ingests by outcome",
			},
			[]string{"status"}, // indexed, unchanged, error
		),
		ingestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Document ingest duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"format"},
		),
		chunksIndexed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chunks_indexed_total",
				Help:      "Total number of chunks written, by chunking strategy",
			},
			[]string{"strategy"},
		),

		queryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of retrieval queries",
			},
			[]string{"mode", "status"},
		),
		queryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Retrieval query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		queryResults: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_results",
				Help:      "Number of chunks returned per query",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
			},
			[]string{"mode"},
		),
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records one served request. path should be the route pattern.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordIngest records one document ingest.
func (c *Collector) RecordIngest(format, status, strategy string, chunks int, duration time.Duration) {
	if c == nil {
		return
	}
	c.ingestTotal.WithLabelValues(status).Inc()
	c.ingestDuration.WithLabelValues(format).Observe(duration.Seconds())
	if chunks > 0 {
		c.chunksIndexed.WithLabelValues(strategy).Add(float64(chunks))
	}
}

// RecordQuery records one retrieval query. mode names the enabled paths,
// e.g. "vector" or "vector+graph".
func (c *Collector) RecordQuery(mode, status string, results int, duration time.Duration) {
	if c == nil {
		return
	}
	c.queryTotal.WithLabelValues(mode, status).Inc()
	c.queryDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if status == "ok" {
		c.queryResults.WithLabelValues(mode).Observe(float64(results))
	}
}

func statusCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return strconv.Itoa(code)
	}
}
