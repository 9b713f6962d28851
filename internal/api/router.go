package api

import (
	"net/http" // HTTP status codes
	"slices"   // Origin list lookup
	"time"     // CORS preflight cache

	"crowdfunding/internal/accounting" // Donation accounting
	"crowdfunding/internal/cache"      // Cached reads
	"crowdfunding/internal/config"     // Application configuration
	"crowdfunding/internal/middleware" // Custom middleware
	"crowdfunding/internal/notify"     // Email notifications
	"crowdfunding/internal/repo"       // Repository functions
	"crowdfunding/internal/utils"      // Tokens

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Deps are the collaborators the handlers are built from
type Deps struct {
	Config     *config.Config
	Store      *repo.Store
	Accounting *accounting.Service
	Cache      *cache.Cache
	Tokens     *utils.TokenIssuer
	Mail       notify.Dispatcher
	Redis      *redis.Client // Optional, used by the health check
}

// SetupRouter builds the gin engine with every route
func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true // 405 for e.g. PUT /payments/:id
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RequestLogger())
	r.Use(middleware.AllowedHostsMiddleware(d.Config.AllowedHosts))
	if len(d.Config.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))
	}

	r.GET("/health", HealthHandler(d.Store, d.Redis)) // Liveness and dependency check

	// Auth routes
	r.POST("/register", RegisterHandler(d.Store, d.Tokens, d.Mail)) // Registration endpoint
	r.POST("/token", LoginHandler(d.Store, d.Tokens))               // Login endpoint
	r.POST("/token/refresh", RefreshHandler(d.Tokens))              // Access token refresh

	auth := middleware.JWTAuthMiddleware(d.Tokens)
	authorOnly := middleware.CollectAuthorOnly(d.Store)

	// Collect routes (protected by JWT)
	collects := r.Group("/collects", auth)
	collects.GET("", ListCollectsHandler(d.Store, d.Cache))
	collects.POST("", CreateCollectHandler(d.Store, d.Cache, d.Mail))
	collects.GET("/:id", GetCollectHandler(d.Store, d.Cache))
	collects.PUT("/:id", authorOnly, UpdateCollectHandler(d.Store, d.Cache))
	collects.PATCH("/:id", authorOnly, UpdateCollectHandler(d.Store, d.Cache))
	collects.DELETE("/:id", authorOnly, DeleteCollectHandler(d.Store, d.Cache))

	// Payment routes (protected by JWT), no update
	payments := r.Group("/payments", auth)
	payments.GET("", ListPaymentsHandler(d.Store, d.Cache))
	payments.POST("", CreatePaymentHandler(d.Accounting, d.Store, d.Mail))
	payments.GET("/:id", GetPaymentHandler(d.Store, d.Cache))
	payments.DELETE("/:id", DeletePaymentHandler(d.Accounting, d.Store))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID")
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

// HealthHandler pings the database and, when configured, Redis
func HealthHandler(store *repo.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := gin.H{"database": "ok"}
		healthy := true
		sqlDB, err := store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status["database"] = err.Error()
			healthy = false
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["redis"] = err.Error()
				healthy = false
			}
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
