package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-recommender/internal/pkg/common"
)

const defaultDedupWindow = time.Second

// Deduplicator 拒絕在時間窗內重複送出的相同 POST 請求
type Deduplicator struct {
	window   time.Duration
	mu       sync.Mutex
	requests map[string]time.Time
	done     chan struct{}
	once     sync.Once
	now      func() time.Time
}

// NewDeduplicator 建立去重器並啟動定期清理
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	d := &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go d.cleanupLoop(10 * time.Minute)
	return d
}

func (d *Deduplicator) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.cleanup()
		case <-d.done:
			return
		}
	}
}

func (d *Deduplicator) cleanup() {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, t := range d.requests {
		if now.Sub(t) > 10*d.window {
			delete(d.requests, k)
		}
	}
}

// Close 停止清理協程
func (d *Deduplicator) Close() {
	d.once.Do(func() { close(d.done) })
}

// seen 記錄指紋，若時間窗內已出現過則回傳 true
func (d *Deduplicator) seen(fingerprint string) bool {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Middleware 請求去重中間件，只處理 POST
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
					Code:    common.ErrCodeInvalidRequest,
					Message: "無法讀取請求體",
				})
				return
			}
			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := common.Fingerprint(c.ClientIP(), c.Request.Method, c.Request.URL.Path, string(body))
		if d.seen(fingerprint) {
			common.LogInfo("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "重複的請求",
			})
			return
		}

		c.Next()
	}
}
