package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	healthHandler "github.com/mshekhar/portfolio-api/internal/handler/health"
	messageHandler "github.com/mshekhar/portfolio-api/internal/handler/message"
	prometheusHandler "github.com/mshekhar/portfolio-api/internal/handler/prometheus"
	"github.com/mshekhar/portfolio-api/internal/middleware"
)

type Router struct {
	engine   *gin.Engine
	messageH *messageHandler.Handler
	healthH  *healthHandler.Handler
	submitRL *middleware.RateLimiter
	metrics  *routerMetrics
}

type Config struct {
	SubmitRate    rate.Limit
	SubmitBurst   int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(messageH *messageHandler.Handler, healthH *healthHandler.Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:   engine,
		messageH: messageH,
		healthH:  healthH,
		submitRL: middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.SubmitRate,
			Burst: config.SubmitBurst,
		}),
		metrics: initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
	)

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)
	r.engine.GET("/metrics", prometheusHandler.Handler())

	// Public submission endpoint behind its own token bucket.
	r.messageH.RegisterSubmitRoute(api, r.submitRL.RateLimit())

	// Admin message routes.
	r.messageH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
