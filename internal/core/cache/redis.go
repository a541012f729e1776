package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "recipe-recommender"

// RedisCache 以 Redis 為後端的快取
type RedisCache struct {
	client *redis.Client
	config *config.CacheConfig
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCache 創建 Redis 快取並測試連接
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", "redis"),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("存活時間", cfg.TTL),
	)
	return newRedisCache(client, cfg), nil
}

func newRedisCache(client *redis.Client, cfg *config.CacheConfig) *RedisCache {
	return &RedisCache{client: client, config: cfg}
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, namespace, key string) (string, error) {
	data, err := s.client.Get(ctx, s.generateKey(namespace, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.misses.Add(1)
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	s.hits.Add(1)
	return data, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, namespace, key, value string) error {
	if err := s.client.Set(ctx, s.generateKey(namespace, key), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 快取統計
func (s *RedisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": "redis",
		"addr":    s.config.RedisAddr,
		"hits":    s.hits.Load(),
		"misses":  s.misses.Load(),
	}
}

// Ping 檢查連線
func (s *RedisCache) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisCache) Close() error {
	return s.client.Close()
}

// generateKey 生成緩存鍵
func (s *RedisCache) generateKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, namespace, key)
}
