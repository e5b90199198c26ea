package main

import (
	"log"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/routes"
	"coursemarket/backend/store"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(cfg.Environment)
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}

	// Session store
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	sessions := store.NewRedisSessionStore(rdb)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, sessions, cfg, logger)

	// Start server
	logger.Info("starting server", zap.String("port", cfg.ServerPort))
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
