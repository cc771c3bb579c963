package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mkarpushin/procurement-backend/internal/config"
	"github.com/mkarpushin/procurement-backend/internal/http/handlers"
	"github.com/mkarpushin/procurement-backend/internal/http/middleware"
)

// SetupRouter собирает все маршруты сервиса.
func SetupRouter(
	cfg *config.Config,
	rfpHandler *handlers.RFPHandler,
	vendorHandler *handlers.VendorHandler,
	proposalHandler *handlers.ProposalHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	ingestHandler *handlers.IngestHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// AI-endpoints прикрыты rate limit: каждый вызов тратит токены модели.
	aiRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	api.POST("/rfps", aiRateLimit, rfpHandler.CreateRFP)
	api.GET("/rfps", rfpHandler.ListRFPs)
	api.GET("/rfps/:id", middleware.UUIDValidator("id"), rfpHandler.GetRFP)
	api.PUT("/rfps/:id", middleware.UUIDValidator("id"), rfpHandler.UpdateRFP)
	api.DELETE("/rfps/:id", middleware.UUIDValidator("id"), rfpHandler.DeleteRFP)
	api.POST("/rfps/:id/send", middleware.UUIDValidator("id"), rfpHandler.SendRFP)
	api.GET("/rfps/:id/recipients", middleware.UUIDValidator("id"), rfpHandler.ListRecipients)
	api.GET("/rfps/:id/proposals", middleware.UUIDValidator("id"), proposalHandler.ListByRFP)

	api.POST("/vendors", vendorHandler.CreateVendor)
	api.GET("/vendors", vendorHandler.ListVendors)
	api.GET("/vendors/:id", middleware.UUIDValidator("id"), vendorHandler.GetVendor)
	api.PUT("/vendors/:id", middleware.UUIDValidator("id"), vendorHandler.UpdateVendor)
	api.DELETE("/vendors/:id", middleware.UUIDValidator("id"), vendorHandler.DeleteVendor)

	api.POST("/proposals", aiRateLimit, proposalHandler.SubmitProposal)
	api.GET("/proposals", proposalHandler.ListProposals)
	api.GET("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.GetProposal)
	api.PUT("/proposals/:id/status", middleware.UUIDValidator("id"), proposalHandler.UpdateStatus)
	api.DELETE("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.DeleteProposal)

	api.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
	api.GET("/analytics/rfps/:id", middleware.UUIDValidator("id"), analyticsHandler.GetRFPAnalytics)

	api.POST("/ingest/poll", ingestHandler.TriggerPoll)

	return r
}
