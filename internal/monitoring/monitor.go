package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	// GatewayCalls counts entity creation calls by entity kind and result
	// (created, rejected, error).
	GatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_gateway_calls_total",
			Help: "Entity creation calls made by the seeder",
		},
		[]string{"entity", "result"},
	)

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seed_gateway_call_duration_seconds",
			Help:    "Duration of entity creation calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"entity"},
	)

	GatewayRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_gateway_retries_total",
			Help: "Retried HTTP gateway requests by reason",
		},
		[]string{"reason"},
	)

	SeedRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_runs_total",
			Help: "Finished seed runs by final status",
		},
		[]string{"status"},
	)
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(GatewayCalls)
		prometheus.MustRegister(GatewayDuration)
		prometheus.MustRegister(GatewayRetries)
		prometheus.MustRegister(SeedRuns)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
