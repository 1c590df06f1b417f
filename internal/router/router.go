package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/handler"
	"github.com/stemsi/survey-seeder/internal/middleware"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/monitoring"
	"github.com/stemsi/survey-seeder/internal/response"
	"github.com/stemsi/survey-seeder/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Template *handler.TemplateHandler
	Seed     *handler.SeedHandler
	WS       *handler.WSHandler
	Health   *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	seedLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(monitoring.MetricsMiddleware())

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", monitoring.PrometheusHandler())

	// ─── 1. Catalog Group (Service JWT) ────────────────────────────────
	catalog := router.Group("/api/v1/catalog")
	catalog.Use(middleware.RequireServiceJWT(authService))
	{
		read := middleware.RequirePermission(model.PermissionCatalogRead)
		write := middleware.RequirePermission(model.PermissionCatalogWrite)

		catalog.GET("/surveys", read, handlers.Catalog.ListSurveys)
		catalog.GET("/surveys/:id", read, handlers.Catalog.GetSurvey)
		catalog.POST("/surveys", write, handlers.Catalog.CreateSurvey)
		catalog.POST("/surveys/:id/sections", write, handlers.Catalog.CreateSection)
		catalog.POST("/sections/:id/questions", write, handlers.Catalog.CreateQuestion)
	}

	// ─── 2. Admin Group (Service JWT) ──────────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireServiceJWT(authService))
	{
		templates := admin.Group("/templates")
		templates.Use(middleware.RequirePermission(model.PermissionTemplatesRead))
		{
			templates.GET("", handlers.Template.ListTemplates)
			templates.GET("/:id", handlers.Template.GetTemplate)
		}

		seed := admin.Group("/seed")
		{
			trigger := []gin.HandlerFunc{
				middleware.RequirePermission(model.PermissionSeedRun),
				seedLimiter.Middleware(),
			}
			seed.POST("/templates/:id", append(trigger, handlers.Seed.SeedTemplate)...)
			seed.POST("/batch", append(trigger, handlers.Seed.SeedBatch)...)

			read := middleware.RequireAnyPermission(model.PermissionSeedRead, model.PermissionSeedRun)
			seed.GET("/runs/last", read, handlers.Seed.GetLastRun)
			seed.GET("/runs/:id", read, handlers.Seed.GetRun)
			seed.GET("/runs/:id/events", read, handlers.WS.SeedProgressSSE)
		}
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1/admin")
	ws.Use(middleware.RequireServiceWSAuth(authService))
	ws.Use(middleware.RequireAnyPermission(model.PermissionSeedRead, model.PermissionSeedRun))
	{
		ws.GET("/seed/runs/:id/progress", handlers.WS.SeedProgressStream)
	}

	return router
}
