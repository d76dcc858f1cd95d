package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-service/internal/auth"
	"inventory-service/internal/cache"
	"inventory-service/internal/config"
	"inventory-service/internal/database"
	"inventory-service/internal/events"
	"inventory-service/internal/handlers"
	"inventory-service/internal/repository"
	"inventory-service/pkg/logger"
	"inventory-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "inventory-service/docs" // Import docs for Swagger
)

// @title           Inventory Service API
// @version         1.0
// @description     Multi-tenant inventory management API: per-user items with stock tracking, typed stock transactions (loss/damage/return), low-stock evaluation, activity trail and spreadsheet export.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Example: "Bearer eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("🚀 Starting Inventory Service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	appLogger.Info("💾 SQLite Configuration",
		zap.String("path", cfg.SQLitePath),
		zap.Int("default_low_stock_threshold", cfg.DefaultLowStockThreshold),
	)

	appLogger.Info("🔐 JWT Configuration",
		zap.Int("secret_length", len(cfg.JWTSecret)),
		zap.Duration("token_lifetime", auth.TokenLifetime),
	)

	// Open the record store
	db, err := database.New(cfg.SQLitePath)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("✅ Database initialized successfully")

	// Repositories
	itemRepo := repository.NewSQLiteItemRepository(db)
	transactionRepo := repository.NewSQLiteTransactionRepository(db)
	activityRepo := repository.NewSQLiteActivityRepository(db)

	// Initialize cache (optional)
	var cacheClient cache.Cache
	if cfg.UseCache {
		appLogger.Info("🔧 Initializing cache (Redis)...")
		cacheClient = cache.New(cfg, appLogger)
		appLogger.Info("✅ Cache initialized successfully")
	} else {
		appLogger.Info("⏭️  Skipping cache initialization (USE_CACHE=false)")
	}

	// Initialize event publisher (optional Kafka, in-memory fallback)
	var eventBus events.EventPublisher
	if cfg.UseKafka {
		appLogger.Info("🔧 Initializing Kafka event publisher...",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic_items", cfg.KafkaTopicItems),
			zap.String("topic_transactions", cfg.KafkaTopicTransactions),
		)
		kafkaBus, err := events.NewKafkaEventPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Failed to initialize Kafka publisher, using in-memory fallback", zap.Error(err))
			eventBus = events.NewInMemoryEventPublisher(appLogger)
		} else {
			eventBus = kafkaBus
			appLogger.Info("✅ Kafka event publisher initialized successfully")
		}
	} else {
		appLogger.Info("⏭️  Kafka is disabled (USE_KAFKA=false), using in-memory event publisher")
		eventBus = events.NewInMemoryEventPublisher(appLogger)
	}
	defer eventBus.Close()

	// JWT manager and auth handler
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, appLogger)
	authHandler := auth.NewAuthHandler(jwtManager, activityRepo, appLogger)

	// Handlers
	itemHandler := handlers.NewItemHandler(appLogger, cfg, itemRepo, activityRepo, cacheClient, eventBus)
	transactionHandler := handlers.NewTransactionHandler(appLogger, cfg, transactionRepo, itemRepo, activityRepo, cacheClient, eventBus)
	activityHandler := handlers.NewActivityHandler(appLogger, activityRepo)
	exportHandler := handlers.NewExportHandler(appLogger, itemRepo, transactionRepo)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()

	// CORS middleware (must be first to handle preflight requests)
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware(appLogger))
	router.Use(middleware.ErrorHandler(appLogger))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint (public)
		v1.GET("/health", healthCheck)

		// Auth endpoints (public)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}

		// Protected endpoints (require JWT authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, appLogger))
		{
			items := protected.Group("/items")
			{
				items.POST("", itemHandler.CreateItem)
				items.GET("", itemHandler.ListItems)
				items.GET("/my", itemHandler.ListMyItems)
				items.GET("/my/count", itemHandler.CountMyItems)
				items.GET("/my/low-stock", itemHandler.ListLowStock)
				items.GET("/my/categories", itemHandler.ListCategories)
				items.GET("/my/distributors", itemHandler.ListDistributors)
				items.GET("/barcode/:barcode", itemHandler.GetItemByBarcode)
				items.GET("/:id", itemHandler.GetItem)
				items.PUT("/:id", itemHandler.UpdateItem)
				items.DELETE("/:id", itemHandler.DeleteItem)
			}

			transactions := protected.Group("/transactions")
			{
				transactions.POST("", transactionHandler.CreateTransaction)
				transactions.GET("/my", transactionHandler.ListMyTransactions)
				transactions.GET("/my/count", transactionHandler.CountMyTransactions)
				transactions.GET("/my/stats", transactionHandler.GetTransactionStats)
				transactions.GET("/:id", transactionHandler.GetTransaction)
				transactions.PUT("/:id", transactionHandler.UpdateTransaction)
			}

			activity := protected.Group("/activity")
			{
				activity.GET("/my", activityHandler.ListMyActivity)
			}

			exportGroup := protected.Group("/export")
			{
				exportGroup.GET("/items", exportHandler.ExportItems)
				exportGroup.GET("/transactions", exportHandler.ExportTransactions)
			}
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("🌐 Starting HTTP server",
			zap.String("address", ":"+cfg.Port),
			zap.String("swagger_url", "http://localhost:"+cfg.Port+"/swagger/index.html"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}

// healthCheck godoc
// @Summary      Health check endpoint
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "inventory-service",
	})
}
