package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadcrm"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Database metrics
	dbConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Number of database connections currently in use",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
	)

	// Business metrics
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of public form submissions",
		},
		[]string{"kind"}, // contact, projectConsultation
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Total number of lifecycle mutations on stored records",
		},
		[]string{"kind", "action"},
	)

	activityLogFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_log_failures_total",
			Help:      "Activity entries that could not be written and were dropped",
		},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Total number of staff login attempts",
		},
		[]string{"status"}, // success, failure
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the submission rate limiter",
		},
		[]string{"route"},
	)
)

// Middleware records request count and latency per matched route.
// Unmatched routes are grouped under "unmatched" to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSubmission records a new public form submission.
func RecordSubmission(kind string) {
	submissionsTotal.WithLabelValues(kind).Inc()
}

// RecordMutation records a successful lifecycle mutation.
func RecordMutation(kind, action string) {
	mutationsTotal.WithLabelValues(kind, action).Inc()
}

// RecordActivityLogFailure records a dropped activity entry.
func RecordActivityLogFailure() {
	activityLogFailuresTotal.Inc()
}

// RecordAuthAttempt records a login attempt.
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimited records a rejected submission.
func RecordRateLimited(route string) {
	rateLimitedTotal.WithLabelValues(route).Inc()
}

// UpdateDBStats copies pool stats into the connection gauges.
func UpdateDBStats(s sql.DBStats) {
	dbConnectionsInUse.Set(float64(s.InUse))
	dbConnectionsIdle.Set(float64(s.Idle))
}
