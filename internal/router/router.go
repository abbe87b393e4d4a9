// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/harvestx/harvestx-backend/internal/config"
	"github.com/harvestx/harvestx-backend/internal/handlers"
	"github.com/harvestx/harvestx-backend/internal/middleware"
	"github.com/harvestx/harvestx-backend/internal/services"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	shareLedgerService := services.NewShareLedgerService(db)
	ledgerClient := services.NewLedgerClient(cfg)

	authService := services.NewAuthService(db, cfg)
	offerService := services.NewOfferService(db, shareLedgerService)
	requestService := services.NewRequestService(db, notificationService)
	settlementService := services.NewSettlementService(db, cfg, ledgerClient, shareLedgerService, notificationService)
	statsService := services.NewStatsService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	offerHandler := handlers.NewOfferHandler(offerService, requestService, storageService, shareLedgerService)
	requestHandler := handlers.NewRequestHandler(requestService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Environment))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Offer routes
		offers := v1.Group("/offers")
		{
			offers.GET("", middleware.OptionalAuth(), offerHandler.ListOffers)
			offers.GET("/:id", middleware.OptionalAuth(), offerHandler.GetOffer)
			offers.GET("/:id/holders", offerHandler.ListOfferHolders)

			// Authenticated routes
			protected := offers.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", offerHandler.CreateOffer)
				protected.GET("/mine", offerHandler.ListMyOffers)
				protected.GET("/:id/requests", offerHandler.ListOfferRequests)
				protected.POST("/:id/documents", middleware.UploadRateLimit(), offerHandler.UploadDocument)
			}
		}

		// Request and settlement routes
		requests := v1.Group("/requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("", requestHandler.CreateRequest)
			requests.GET("/mine", requestHandler.ListMyRequests)
			requests.POST("/:id/respond", requestHandler.RespondToRequest)
			requests.GET("/:id/deposit-info", settlementHandler.GetDepositInfo)
			requests.POST("/:id/settle", settlementHandler.Settle)
		}

		// Statistics routes (public)
		stats := v1.Group("/stats")
		{
			stats.GET("/platform", statsHandler.GetPlatformStats)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
