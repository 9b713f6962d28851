package main

import (
	"context" // context package is needed for Redis operations

	"crowdfunding/internal/accounting" // Donation accounting
	"crowdfunding/internal/api"        // Custom package for API handlers
	"crowdfunding/internal/cache"      // Read-through cache
	"crowdfunding/internal/config"     // Custom package for configuration
	"crowdfunding/internal/db"         // Database connection
	"crowdfunding/internal/notify"     // Email job queue
	"crowdfunding/internal/repo"       // Repository functions
	"crowdfunding/internal/utils"      // Tokens

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.Debug {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release unless debugging
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ch := cache.New(redisClient, cfg.CacheTTL)
	r := api.SetupRouter(api.Deps{
		Config:     cfg,
		Store:      repo.New(gdb),
		Accounting: accounting.New(gdb, ch),
		Cache:      ch,
		Tokens:     utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenLifetime, cfg.RefreshTokenLifetime),
		Mail:       notify.NewRedisQueue(redisClient, cfg.EmailQueue),
		Redis:      redisClient,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
