package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	upstreamReady = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_upstream_ready",
		Help: "1 when the last upstream readiness probe succeeded.",
	})
)

// Outbound calls made by the API client.
var (
	apiMetricsOnce sync.Once

	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfadesk_api_requests_total",
			Help: "Requests sent to the CFA backend API.",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cfadesk_api_request_duration_seconds",
			Help:    "Latency of requests sent to the CFA backend API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Init registers the gateway metrics in the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, upstreamReady)
	registerAPIMetrics()
}

func registerAPIMetrics() {
	apiMetricsOnce.Do(func() {
		prometheus.MustRegister(apiRequestsTotal, apiRequestDuration)
	})
}

// Handler exposes the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetReady records the outcome of the last upstream readiness probe.
func SetReady(ok bool) {
	if ok {
		upstreamReady.Set(1)
		return
	}
	upstreamReady.Set(0)
}

// ObserveAPICall records one outbound API request. status is 0 for transport failures.
func ObserveAPICall(method, path string, status int, d time.Duration) {
	registerAPIMetrics()
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	p := CanonicalPath(path)
	apiRequestsTotal.WithLabelValues(method, p, code).Inc()
	apiRequestDuration.WithLabelValues(method, p, code).Observe(d.Seconds())
}

// Instrument measures rate, latency and in-flight requests of next.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses numeric identifiers so label cardinality stays bounded:
// /api/contrats/12/history becomes /api/contrats/:id/history.
func CanonicalPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if _, err := strconv.ParseUint(part, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the instrumented writer.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
