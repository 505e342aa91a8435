package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)

	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		},
	)

	ordersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zenjaura_orders_created_total",
			Help: "Orders placed through checkout.",
		},
	)

	orderRevenue = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zenjaura_orders_paid_amount_total",
			Help: "Sum of order totals confirmed as paid.",
		},
	)

	cartConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zenjaura_cart_version_conflicts_total",
			Help: "Cart writes rejected because of a concurrent modification.",
		},
		[]string{"outcome"},
	)

	notificationsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zenjaura_notifications_purged_total",
			Help: "Expired notifications removed by the purger.",
		},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped", slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped", slog.String("error", err.Error()))
	}
}

func OrderCreated() {
	ordersCreated.Inc()
}

func OrderPaid(amount float64) {
	orderRevenue.Add(amount)
}

// CartConflict records a lost compare-and-swap; retried is false once retries are exhausted.
func CartConflict(retried bool) {
	outcome := "exhausted"
	if retried {
		outcome = "retried"
	}

	cartConflicts.WithLabelValues(outcome).Inc()
}

func NotificationsPurged(n int64) {
	notificationsPurged.Add(float64(n))
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware labels requests by the matched route pattern so ids don't explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)

		defer func() {
			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, path).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			httpRequestsInFlight.Dec()
		}()

		next.ServeHTTP(rw, r)
	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
