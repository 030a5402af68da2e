package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/comitanigiacomo/kanso-streaks/docs"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/metrics"
)

type RouterDependencies struct {
	HabitHandler      *HabitHandler
	CompletionHandler *CompletionHandler
	StreakHandler     *StreakHandler
	TokenService      middleware.TokenValidator
	Metrics           *metrics.Metrics
	Logger            logrus.FieldLogger

	// nil DB or Redis reports "disabled" on /health
	DB    *sqlx.DB
	Redis *redis.Client

	RateLimit   int
	RateWindow  time.Duration
	CORSOrigins []string
	PublicHost  string
	StartTime   time.Time
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	router.Use(middleware.ForwardedHost(deps.PublicHost))

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow, deps.Logger))
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		status, code := "ok", http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.HabitHandler.RegisterRoutes(apiV1)
		deps.CompletionHandler.RegisterRoutes(apiV1)
		deps.StreakHandler.RegisterRoutes(apiV1)
	}

	return router
}
