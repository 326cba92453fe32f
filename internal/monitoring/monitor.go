package monitoring

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Total number of graded survey submissions",
		},
		[]string{"survey_type"},
	)

	EssayGradings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essay_gradings_total",
			Help: "Total number of essay gradings by result source",
		},
		[]string{"source"},
	)
)

// Essay grading sources reported on the essay_gradings_total counter.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(EssayGradings)
}

// MetricsMiddleware records request counts and latencies per route.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		duration := time.Since(start).Seconds()
		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
		}

		endpoint := c.Route().Path
		RequestCounter.WithLabelValues(
			c.Method(),
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Method(),
			endpoint,
		).Observe(duration)

		return err
	}
}
