package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the decode service.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	decodesTotal   *prometheus.CounterVec
	decodeDuration *prometheus.HistogramVec
	decodeWarnings *prometheus.CounterVec
	recordsDecoded *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espcarve_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "espcarve_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		decodesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espcarve_decodes_total",
				Help: "Total number of partition decode requests",
			},
			[]string{"format", "status"},
		),
		decodeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "espcarve_decode_duration_seconds",
				Help:    "Partition decode duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		decodeWarnings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espcarve_decode_warnings_total",
				Help: "Total number of warnings raised while decoding",
			},
			[]string{"format"},
		),
		recordsDecoded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espcarve_records_decoded_total",
				Help: "Total number of records decoded",
			},
			[]string{"format"},
		),
	}
}

// ObserveDecode records the outcome of one decode request.
func (m *Metrics) ObserveDecode(format string, duration time.Duration, records, warnings int, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.decodesTotal.WithLabelValues(format, status).Inc()
	m.decodeDuration.WithLabelValues(format).Observe(duration.Seconds())
	m.decodeWarnings.WithLabelValues(format).Add(float64(warnings))
	m.recordsDecoded.WithLabelValues(format).Add(float64(records))
}

// InstrumentHandler wraps an HTTP handler with request metrics.
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		handler(rw, r)

		m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(rw.status)).Inc()
		m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
