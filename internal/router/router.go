package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SumatiPandey/Doctor-Appointment/internal/config"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/health"
	"github.com/SumatiPandey/Doctor-Appointment/internal/middleware"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
)

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware
	health *health.Handler
	routes []handler.Routes
}

type RouterConfig struct {
	Mode           string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	RateLimit      config.RateLimitConfig
	CORS           config.CORSConfig
	Metrics        *metrics.Metrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH *health.Handler,
	cfg RouterConfig,
	routes ...handler.Routes,
) *Router {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()

	r := &Router{
		engine: engine,
		auth:   auth,
		health: healthH,
		routes: routes,
	}

	// Recovery sits under RequestID so panics are logged with the id.
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Metrics(cfg.Metrics),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		cors.New(corsConfig(cfg.CORS)),
		middleware.SizeLimit(cfg.MaxBodyBytes),
	)

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.Use(middleware.Timeout(cfg.RequestTimeout))

	return r
}

func corsConfig(c config.CORSConfig) cors.Config {
	cfg := cors.Config{
		AllowOrigins:  c.AllowedOrigins,
		AllowMethods:  c.AllowedMethods,
		AllowHeaders:  c.AllowedHeaders,
		ExposeHeaders: []string{middleware.HeaderXRequestID},
		MaxAge:        c.MaxAge,
	}
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}
	return cfg
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)

	api := r.engine.Group("/api")

	// Anonymous reads of the doctor directory are safe to cache.
	public := api.Group("")
	public.Use(middleware.Cache(middleware.PublicCacheConfig()))

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	for _, h := range r.routes {
		h.RegisterRoutes(public, protected, r.auth.RequireOperation)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
