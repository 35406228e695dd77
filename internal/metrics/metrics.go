// Package metrics exposes Prometheus collectors for HTTP traffic and quiz outcomes.
package metrics

import (
	"strconv"
	"time"

	"forklift-training-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	attempts *prometheus.CounterVec
	scores   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_attempts_completed_total",
				Help: "Completed quiz attempts by result tier",
			},
			[]string{"tier"},
		),
		scores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiz_score_percentage",
				Help:    "Distribution of completed attempt percentages",
				Buckets: []float64{20, 40, 60, 80, 100},
			},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.attempts, m.scores,
		prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return m
}

// AttemptCompleted counts one finished attempt.
func (m *Metrics) AttemptCompleted(record domain.ScoreRecord) {
	m.attempts.WithLabelValues(string(domain.TierFor(record.Percentage))).Inc()
	m.scores.Observe(record.Percentage)
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
