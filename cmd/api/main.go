package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-recommender/internal/api"
	"recipe-recommender/internal/api/handlers/health"
	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/core/catalog"
	"recipe-recommender/internal/core/queue"
	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/infrastructure/store"
	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("catalog_enabled", cfg.Catalog.Enabled),
		zap.String("catalog_key", config.MaskSecret(cfg.Catalog.APIKey)),
	)

	ctx := context.Background()

	// 資料來源
	db, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		common.LogFatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()

	checks := map[string]health.Pinger{"store": db}

	// 食譜預設來自資料庫，啟用目錄服務時改由遠端提供
	var recipes recommend.RecipeSource = db
	if cfg.Catalog.Enabled {
		client := catalog.NewClient(&cfg.Catalog)
		recipes = client
		checks["catalog"] = client
	}

	// 初始化快取
	resultCache, err := cache.New(cfg)
	switch {
	case errors.Is(err, common.ErrCacheDisabled):
		common.LogInfo("Cache disabled")
	case err != nil:
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	var (
		serviceCache recommend.ResultCache
		cacheStats   health.StatsProvider
	)
	if resultCache != nil {
		defer resultCache.Close()
		serviceCache = resultCache
		cacheStats = resultCache
		if p, ok := resultCache.(health.Pinger); ok {
			checks["cache"] = p
		}
	}

	svc := recommend.NewService(db, recipes,
		recommend.WithLogger(common.ComponentLogger("recommend")),
		recommend.WithRandom(recommend.NewRandom(cfg.Recommend.Seed)),
		recommend.WithCache(serviceCache),
		recommend.WithConfig(recommend.Config{
			MaxPaths:       cfg.Recommend.MaxPaths,
			DefaultCount:   cfg.Recommend.DefaultCount,
			CandidateLimit: cfg.Recommend.CandidateLimit,
		}),
	)

	queueManager := queue.NewManager(&cfg.Queue, svc)
	defer queueManager.Close()

	// 設置路由
	router, cleanup, err := api.SetupRouter(cfg, api.Dependencies{
		Submitter: queueManager,
		Queue:     queueManager,
		Cache:     cacheStats,
		Checks:    checks,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
