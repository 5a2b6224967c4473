package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/http/handlers"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/http/middleware"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Console     *usecase.Console
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Cache       CacheChecker
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.Metrics.Handler())
	if deps.Config != nil && len(deps.Config.App.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	}

	var healthOptions []handlers.HealthOption
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	var session *usecase.SessionStore
	if deps.Console != nil {
		session = deps.Console.Session
	}
	health := handlers.NewHealthHandler(session, healthOptions...)
	r.GET("/healthz", health.Status)
	r.GET("/readyz", health.Readiness)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	if deps.Console == nil {
		return r
	}
	console := deps.Console

	api := r.Group("/api/v1")
	{
		sessionHandler := handlers.NewSessionHandler(console.Session, console.Login)
		sessionHandler.RegisterRoutes(api, buildOTPRequestMiddlewares(deps)...)

		screens := api.Group("/screens")
		handlers.NewScreenHandler(console.Gate).RegisterRoutes(screens)

		resourceHandler := handlers.NewResourceHandler(console)
		resources := api.Group("/resources/:kind",
			resourceHandler.ResolveKind,
			middleware.Gate(resourceHandler.EvaluateKind),
		)
		resourceHandler.RegisterRoutes(resources)

		promotionHandler := handlers.NewPromotionHandler(console.Promotions, console.Engine)
		api.GET("/roles/:role/defaults", middleware.RequireSession(console.Gate), promotionHandler.RoleDefaults)
		api.POST("/users/:id/promote", middleware.RequireAction(console.Gate, "user.promote"), promotionHandler.Promote)
	}

	return r
}

func buildOTPRequestMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.OTPRequestMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "otp_request_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
