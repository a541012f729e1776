package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Recommender 執行推薦計算
type Recommender interface {
	Recommend(ctx context.Context, userID string, opts recommend.Options, count int) ([]recommend.RecipeScoreResult, error)
}

// Request 隊列請求
type Request struct {
	Context context.Context
	UserID  string
	Options recommend.Options
	Count   int
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Recipes []recommend.RecipeScoreResult
	Error   error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器，固定數量的 worker 依序處理推薦請求
type Manager struct {
	config      *config.QueueConfig
	recommender Recommender
	queue       chan *Request
	done        chan struct{}
	mu          sync.RWMutex // 保護 closed 與入隊，避免關閉後仍有請求滯留
	closed      bool
	wg          sync.WaitGroup
	processed   atomic.Int64
	failed      atomic.Int64
	closeOnce   sync.Once
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(cfg *config.QueueConfig, recommender Recommender) *Manager {
	m := &Manager{
		config:      cfg,
		recommender: recommender,
		queue:       make(chan *Request, cfg.MaxSize),
		done:        make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("推薦隊列已啟動",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return m
}

// Enqueue 將請求加入隊列，隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, userID string, opts recommend.Options, count int) (<-chan Result, error) {
	req := &Request{
		Context: ctx,
		UserID:  userID,
		Options: opts,
		Count:   count,
		Result:  make(chan Result, 1),
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, common.ErrServiceUnavailable
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.String("user_id", userID),
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		common.LogWarn("推薦隊列已滿", zap.Int("max_queue_size", m.config.MaxSize))
		return nil, common.ErrQueueFull
	}
}

// Submit 加入隊列並等待結果
func (m *Manager) Submit(ctx context.Context, userID string, opts recommend.Options, count int) ([]recommend.RecipeScoreResult, error) {
	ch, err := m.Enqueue(ctx, userID, opts, count)
	if err != nil {
		return nil, err
	}
	select {
	case res := <-ch:
		return res.Recipes, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for {
		select {
		case req := <-m.queue:
			m.process(id, req)
		case <-m.done:
			return
		}
	}
}

func (m *Manager) process(id int, req *Request) {
	if err := req.Context.Err(); err != nil {
		m.failed.Add(1)
		req.Result <- Result{Error: err}
		return
	}

	start := time.Now()
	recipes, err := m.recommender.Recommend(req.Context, req.UserID, req.Options, req.Count)
	if err != nil {
		m.failed.Add(1)
	} else {
		m.processed.Add(1)
	}
	common.LogDebug("Request processed",
		zap.Int("worker", id),
		zap.String("user_id", req.UserID),
		zap.Duration("耗時", time.Since(start)),
		zap.Error(err),
	)
	req.Result <- Result{Recipes: recipes, Error: err}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: m.processed.Load(),
		FailedCount:    m.failed.Load(),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 停止接受請求並等待 worker 結束，尚未處理的請求回覆 ErrServiceUnavailable
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.done)
		m.mu.Unlock()

		m.wg.Wait()
		dropped := m.drain()
		common.LogInfo("推薦隊列已關閉",
			zap.Int64("processed", m.processed.Load()),
			zap.Int64("failed", m.failed.Load()),
			zap.Int("dropped", dropped),
		)
	})
}

func (m *Manager) drain() int {
	n := 0
	for {
		select {
		case req := <-m.queue:
			m.failed.Add(1)
			req.Result <- Result{Error: common.ErrServiceUnavailable}
			n++
		default:
			return n
		}
	}
}
