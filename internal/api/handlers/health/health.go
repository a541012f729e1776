package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-recommender/internal/core/queue"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線狀態的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueStatusProvider 提供隊列狀態
type QueueStatusProvider interface {
	GetQueueStatus() *queue.Status
}

// StatsProvider 提供緩存統計
type StatsProvider interface {
	Stats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version      string
	queue        QueueStatusProvider
	cache        StatsProvider
	dependencies map[string]Pinger
	timeout      time.Duration
}

// NewHandler 創建健康檢查處理器；queue 與 cache 可為 nil
func NewHandler(version string, q QueueStatusProvider, cache StatsProvider, dependencies map[string]Pinger) *Handler {
	return &Handler{
		version:      version,
		queue:        q,
		cache:        cache,
		dependencies: dependencies,
		timeout:      3 * time.Second,
	}
}

// HealthCheck 回傳版本、執行期、隊列與緩存狀態
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 逐一檢查外部依賴，任一失敗回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.dependencies))
	ready := true
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			common.LogWarn("依賴檢查失敗", zap.String("dependency", name), zap.Error(err))
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
