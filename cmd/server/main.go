package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/veripath/backend/internal/config"
	"github.com/veripath/backend/internal/database"
	"github.com/veripath/backend/internal/handlers"
	"github.com/veripath/backend/internal/jobs"
	kycdomain "github.com/veripath/backend/internal/kyc"
	"github.com/veripath/backend/internal/queue"
	"github.com/veripath/backend/internal/routes"
	kycsvc "github.com/veripath/backend/internal/services/kyc"
	"github.com/veripath/backend/internal/services/notification"
	"github.com/veripath/backend/internal/services/profile"
	"github.com/veripath/backend/internal/services/promo"
	"github.com/veripath/backend/internal/services/screening"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.LoadConfig()

	// Initialize database
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Create Redis-backed queue instance
	redisQueue := queue.NewRedisQueue(redisClient, db)

	// Jurisdiction policy for the onboarding workflow
	policy := kycdomain.NewCountryPolicy(cfg.KYC.SkipAddressCountries, cfg.KYC.PromoCountries)

	// Initialize services
	profileService := profile.NewProfileService(db)
	promoService := promo.NewPromoCodeService(db)
	kycService := kycsvc.NewKYCService(profileService, policy, redisQueue)
	screeningService := screening.NewScreeningService(profileService, policy, redisQueue, cfg.Screening)
	notificationService := notification.NewNotificationService(profileService, promoService, policy, cfg.Mail)

	// Register all job handlers
	jobs.RegisterAllJobHandlers(redisQueue, screeningService, notificationService)

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(profileService, promoService)
	relativeHandler := handlers.NewRelativeHandler(profileService)
	kycHandler := handlers.NewKYCHandler(kycService)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.RegisterRoutes(router, db, profileHandler, relativeHandler, kycHandler)

	// Start background job processor
	jobProcessor := queue.NewJobProcessor(redisQueue, 10)
	go jobProcessor.Start()

	// Start server
	srv := startServer(router, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop job processor
	jobProcessor.Stop()

	// Create a deadline to wait for
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// startServer starts the HTTP server
func startServer(router *gin.Engine, port string) *http.Server {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", port)
	return srv
}
