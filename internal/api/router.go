package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recipe-recommender/internal/api/handlers/health"
	"recipe-recommender/internal/api/handlers/recommendation"
	"recipe-recommender/internal/api/middleware"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Submitter recommendation.Submitter
	Queue     health.QueueStatusProvider
	Cache     health.StatsProvider
	Checks    map[string]health.Pinger
}

// SetupRouter 設置路由，回傳的 cleanup 用於停止中間件的背景協程
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, func(), error) {
	if deps.Submitter == nil {
		return nil, nil, errors.New("recommendation submitter is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// 註冊基礎中間件
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(timeout(timeoutDuration))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Queue, deps.Cache, deps.Checks)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(dedup.Middleware())
	{
		h := recommendation.NewHandler(deps.Submitter, cfg.App.Debug)
		api.POST("/recommendations", h.HandleRecommend)
		api.GET("/users/:userID/recommendations", h.HandleUserRecommendations)
	}

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, common.ErrorResponse{
			Code:    common.ErrCodeMethodNotAllowed,
			Message: common.ErrMethodNotAllowed.Message,
		})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrCodeNotFound,
			Message: common.ErrNotFound.Message,
		})
	})

	common.LogInfo("Router setup completed",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
	)
	return router, dedup.Close, nil
}

// timeout 為每個請求設定截止時間
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", d),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeGatewayTimeout,
				Message: common.ErrGatewayTimeout.Message,
			})
		}
	}
}
