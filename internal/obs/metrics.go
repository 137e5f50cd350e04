// Package obs exposes Prometheus metrics for the authorization core and
// the HTTP surface.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	authzDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization pipeline outcomes by stage and result.",
		},
		[]string{"stage", "outcome"},
	)

	tokenReuse = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "token_reuse_detected_total",
		Help: "Refresh rotation-counter mismatches treated as reuse.",
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
)

// Init registers the metrics with the default registry.
func Init() {
	prometheus.MustRegister(authzDecisions, tokenReuse, httpRequestsTotal, httpRequestDuration)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncAuthzDecision records one pipeline stage outcome.
func IncAuthzDecision(stage, outcome string) {
	authzDecisions.WithLabelValues(stage, outcome).Inc()
}

// IncTokenReuse records a detected refresh-token reuse.
func IncTokenReuse() {
	tokenReuse.Inc()
}

// Instrument wraps an HTTP handler with request count and latency metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
