// AngelaMos | 2026
// metrics.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	metricRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursehub_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route"})

	metricInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_http_requests_in_flight",
		Help: "HTTP requests currently being served",
	})

	metricRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	metricRateLimitFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_rate_limit_fallback_total",
		Help: "Rate limit decisions served by the in-process fallback",
	})
)

// Metrics records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metricInFlight.Inc()
		defer metricInFlight.Dec()

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		metricRequestsTotal.WithLabelValues(
			r.Method,
			route,
			strconv.Itoa(wrapped.statusCode),
		).Inc()
		metricRequestDuration.WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}
