package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and tracker collectors. It satisfies
// services.EventRecorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeRequests      prometheus.Gauge

	promotionsTotal    prometheus.Counter
	checkInsTotal      prometheus.Counter
	leadsImportedTotal prometheus.Counter
	followUpsPending   prometheus.Gauge
}

// NewMetrics registers every collector with reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		activeRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Number of in-flight HTTP requests",
			},
		),

		promotionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sgl_promotions_total",
				Help: "Total number of leads promoted to onboarded leaders",
			},
		),
		checkInsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sgl_check_ins_total",
				Help: "Total number of salesperson check-ins",
			},
		),
		leadsImportedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sgl_leads_imported_total",
				Help: "Total number of leads accepted from CSV imports",
			},
		),
		followUpsPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sgl_leads_needing_follow_up",
				Help: "Onboarded leaders that have not ordered since the follow-up threshold",
			},
		),
	}
}

// Middleware records request counts and latency. Paths are the route
// templates so ids do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// PromotionRecorded counts a promotion
func (m *Metrics) PromotionRecorded() {
	m.promotionsTotal.Inc()
}

// CheckInRecorded counts a check-in
func (m *Metrics) CheckInRecorded() {
	m.checkInsTotal.Inc()
}

// LeadsImported adds count accepted rows
func (m *Metrics) LeadsImported(count int) {
	m.leadsImportedTotal.Add(float64(count))
}

// FollowUpsPending sets the follow-up gauge
func (m *Metrics) FollowUpsPending(count int) {
	m.followUpsPending.Set(float64(count))
}
