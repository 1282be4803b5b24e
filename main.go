package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ardiansyahdp/konveksi-api/cache"
	"github.com/ardiansyahdp/konveksi-api/config"
	"github.com/ardiansyahdp/konveksi-api/controllers"
	"github.com/ardiansyahdp/konveksi-api/middleware"
	"github.com/ardiansyahdp/konveksi-api/models"
	"github.com/ardiansyahdp/konveksi-api/services"
)

func main() {
	log.Println("Starting Konveksi API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.CustomOrder{}, &models.Transaction{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Cache: Redis when configured, otherwise process-local.
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisStore
	} else {
		store = cache.NewMemoryStore(cache.TTLFrequent, 10*time.Minute)
		log.Println("Using in-process cache")
	}

	// Admin notifications: Kafka when configured, otherwise log-only.
	var notifier services.Notifier
	if cfg.KafkaBroker != "" {
		kafkaNotifier, err := services.NewKafkaNotifier(cfg.KafkaBroker)
		if err != nil {
			log.Fatalf("Failed to connect to Kafka: %v", err)
		}
		notifier = kafkaNotifier
	}
	services.InitNotifier(notifier)

	// File uploads: only wired when an S3 bucket is configured.
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		services.InitUploadService(s3Service)
	}

	orderService := services.NewOrderService(db, store, services.GetNotifier())
	transactionService := services.NewTransactionService(db, store)

	router := setupRouter(cfg, orderService, transactionService)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, orderService *services.OrderService, transactionService *services.TransactionService) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	orderController := controllers.NewOrderController(orderService)
	transactionController := controllers.NewTransactionController(transactionService)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		authenticated := v1.Group("")
		authenticated.Use(middleware.EnsureValidToken(cfg), middleware.ResolveRequester())
		{
			authenticated.POST("/custom-orders", orderController.Create)
			authenticated.GET("/custom-orders", orderController.List)
			authenticated.GET("/custom-orders/:id", orderController.GetByID)

			authenticated.POST("/transactions/:id/bayar", transactionController.Bayar)
			authenticated.POST("/transactions/:id/resend", transactionController.Resend)
			authenticated.GET("/transactions", transactionController.List)
			authenticated.GET("/transactions/:id", transactionController.GetByID)

			authenticated.POST("/uploads/bukti-pembayaran", controllers.UploadBukti)
			authenticated.POST("/uploads/referensi-desain", controllers.UploadReferensi)

			admin := authenticated.Group("")
			admin.Use(middleware.RequireElevated())
			{
				admin.PATCH("/custom-orders/:id", orderController.Update)
				admin.DELETE("/custom-orders/:id", orderController.SoftDelete)
				admin.DELETE("/custom-orders/:id/permanent", orderController.HardDelete)
				admin.POST("/custom-orders/:id/terima", orderController.Terima)
				admin.POST("/custom-orders/:id/tolak", orderController.Tolak)
				admin.POST("/custom-orders/:id/deal", orderController.Deal)
				admin.POST("/custom-orders/:id/batal", orderController.Batal)

				admin.POST("/transactions", transactionController.Create)
				admin.PATCH("/transactions/:id", transactionController.Update)
				admin.DELETE("/transactions/:id", transactionController.SoftDelete)
				admin.DELETE("/transactions/:id/permanent", transactionController.HardDelete)
				admin.POST("/transactions/:id/terima", transactionController.Terima)
				admin.POST("/transactions/:id/tolak", transactionController.Tolak)
			}
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Konveksi API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
