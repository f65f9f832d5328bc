package main

import (
	"context"
	"log"
	"time"

	"github.com/masroufi/sync-api/config"
	"github.com/masroufi/sync-api/handlers"
	"github.com/masroufi/sync-api/middleware"
	"github.com/masroufi/sync-api/routes"
	"github.com/masroufi/sync-api/services"
	"github.com/masroufi/sync-api/store"
	"github.com/masroufi/sync-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const pendingReplayInterval = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	local, err := store.Open(cfg.CachePath)
	if err != nil {
		log.Fatal("Failed to open local cache:", err)
	}
	defer local.Close()
	log.Println("✅ Local cache ready at", cfg.CachePath)

	client, err := config.InitRemote(cfg.MongoURL)
	if err != nil {
		log.Fatal("Failed to connect to remote store:", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	log.Println("✅ Remote store connected")

	lists := store.NewListCache(local)
	remote := services.NewMongoRemote(client.Database(cfg.MongoDB))
	notifier := services.NewNotifier()
	pending := services.NewPendingQueue(local, lists, remote, notifier)

	svc := routes.Services{
		Transactions:  services.NewTransactionService(lists, remote, notifier, pending),
		Goals:         services.NewGoalService(lists, remote, notifier, pending),
		Subscriptions: services.NewSubscriptionService(lists, remote, notifier, pending),
		Budgets:       services.NewBudgetService(local, remote, notifier),
	}

	// Rejoue périodiquement les écritures distantes en attente
	go pending.Run(context.Background(), pendingReplayInterval)

	wsHandler := handlers.NewWSHandler(notifier)

	router := gin.Default()

	allowedOrigins := []string{cfg.FrontendURL}
	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("📨 %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})

	router.Use(middleware.RateLimiter(100, time.Minute))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/ws/stream", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupSyncRoutes(protected, svc)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"pending": pending.Len(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	utils.LogStartup("masroufi-sync", "1.0.0", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
