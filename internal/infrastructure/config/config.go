package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Store       StoreConfig     `mapstructure:"store"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Queue       QueueConfig     `mapstructure:"queue"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Recommend   RecommendConfig `mapstructure:"recommend"`
	Catalog     CatalogConfig   `mapstructure:"catalog"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StoreConfig 庫存與食譜資料來源設定
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory | sqlite | postgres
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory | redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// QueueConfig 推薦計算隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RecommendConfig 推薦引擎設定
type RecommendConfig struct {
	MaxPaths       int   `mapstructure:"max_paths"`
	DefaultCount   int   `mapstructure:"default_count"`
	CandidateLimit int   `mapstructure:"candidate_limit"`
	Seed           int64 `mapstructure:"seed"` // 0 表示以時間為種子
}

// CatalogConfig 遠端食譜目錄設定
type CatalogConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時只用環境變數與預設值
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("store.driver", "STORE_DRIVER")
	viper.BindEnv("store.dsn", "DATABASE_URL")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("catalog.base_url", "CATALOG_BASE_URL")
	viper.BindEnv("catalog.api_key", "CATALOG_API_KEY")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskSecret 遮罩機密字串，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-recommender")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 資料來源設定
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.dsn", "data/pantry.db")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "5m")
	viper.SetDefault("cache.cleanup_interval", "1m")
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.redis_password", "")
	viper.SetDefault("cache.redis_db", 0)

	// 隊列設定
	viper.SetDefault("queue.workers", 4)
	viper.SetDefault("queue.max_size", 100)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 推薦引擎設定
	viper.SetDefault("recommend.max_paths", 100)
	viper.SetDefault("recommend.default_count", 5)
	viper.SetDefault("recommend.candidate_limit", 1000)
	viper.SetDefault("recommend.seed", 0)

	// 遠端食譜目錄
	viper.SetDefault("catalog.enabled", false)
	viper.SetDefault("catalog.base_url", "")
	viper.SetDefault("catalog.api_key", "")
	viper.SetDefault("catalog.timeout", "10s")

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if config.Store.DSN == "" {
			return fmt.Errorf("store dsn is required for driver %q", config.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported store driver %q", config.Store.Driver)
	}

	if config.Cache.Enabled {
		if config.Cache.Backend != "memory" && config.Cache.Backend != "redis" {
			return fmt.Errorf("unsupported cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	if config.Recommend.MaxPaths <= 0 {
		return fmt.Errorf("invalid recommend max paths")
	}
	if config.Recommend.DefaultCount <= 0 {
		return fmt.Errorf("invalid recommend default count")
	}

	if config.Catalog.Enabled && config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base url is required when catalog is enabled")
	}

	return nil
}
