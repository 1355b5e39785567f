package handlers

import (
	"github.com/SscSPs/currency_swapper/cmd/docs"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/middleware"
	"github.com/SscSPs/currency_swapper/internal/platform/config"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
	submitLimiter *limiter.Limiter,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/", getHome)

	setupAPIV1Routes(r, cfg, services, submitLimiter)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	submitLimiter *limiter.Limiter,
) {
	v1 := r.Group("/api/v1")

	// Public: the catalog and opening a session
	registerCatalogRoutes(v1, service.Catalog)
	registerSessionRoutes(v1, cfg, service.Sessions)

	// Everything below addresses the caller's own session
	authed := v1.Group("", middleware.SessionAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer, service.Sessions))
	submitLimit := func(c *gin.Context) { c.Next() }
	if submitLimiter != nil {
		submitLimit = middleware.RateLimit(submitLimiter)
	}
	registerSwapRoutes(authed, service.Events, submitLimit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
