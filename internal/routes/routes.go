package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/veripath/backend/internal/handlers"
	"github.com/veripath/backend/internal/middleware"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, profileHandler *handlers.ProfileHandler, relativeHandler *handlers.RelativeHandler, kycHandler *handlers.KYCHandler) {
	// 60 requests per second per IP for the API, 10 per second for webhook senders
	rateLimiter := middleware.NewRateLimiter(60, 10, 20, 5)

	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(rateLimiter.IPRateLimiterMiddleware())
	{
		profiles := api.Group("/profiles")
		{
			profiles.POST("", profileHandler.CreateProfile)
			profiles.GET("", profileHandler.ListProfiles)
			profiles.GET("/:id", profileHandler.GetProfile)
			profiles.POST("/:id/occupation", profileHandler.AddOccupationData)
			profiles.POST("/:id/relatives", relativeHandler.CreateRelative)
			profiles.GET("/:id/relatives", relativeHandler.ListRelatives)
		}

		kyc := api.Group("/kyc")
		{
			kyc.POST("/manual-check", kycHandler.HandleManualBackgroundCheck)
			kyc.GET("/manual-review", kycHandler.ManualReviewWorklist)
		}
	}

	// Webhook senders retry on 429 so they get a separate, tighter bucket
	webhooks := router.Group("/api/webhooks/kyc")
	webhooks.Use(rateLimiter.WebhookRateLimiterMiddleware())
	{
		webhooks.POST("/id-verification", kycHandler.HandleIDVerification)
		webhooks.POST("/address-verification", kycHandler.HandleAddressVerification)
	}
}
