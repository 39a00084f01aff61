package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストレージバックエンドの種別。
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	StorageBackend string // memory | postgres
	DatabaseURL    string

	// Key-Value store (Auth Store の永続化先)
	KVBackend     string // memory | redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Booking
	BookingInitialStatus string
	SeedDemoData         bool
	CompletionInterval   time.Duration

	// Catalog
	CatalogURL          string
	CatalogFetchTimeout time.Duration
	CatalogMaxSize      int64

	// Rate Limit (req/min)
	RateLimitGeneral int
	RateLimitLogin   int

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure       bool
	CookieDomain       string
	ClientCookieMaxAge int

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 選択したバックエンドに必要な環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.StorageBackend = strings.ToLower(getEnvString("STORAGE_BACKEND", BackendMemory))
	cfg.KVBackend = strings.ToLower(getEnvString("KV_BACKEND", BackendMemory))
	cfg.BookingInitialStatus = strings.ToLower(getEnvString("BOOKING_INITIAL_STATUS", "pending"))

	var invalid []string
	if cfg.StorageBackend != BackendMemory && cfg.StorageBackend != BackendPostgres {
		invalid = append(invalid, "STORAGE_BACKEND="+cfg.StorageBackend)
	}
	if cfg.KVBackend != BackendMemory && cfg.KVBackend != BackendRedis {
		invalid = append(invalid, "KV_BACKEND="+cfg.KVBackend)
	}
	if cfg.BookingInitialStatus != "pending" && cfg.BookingInitialStatus != "confirmed" {
		invalid = append(invalid, "BOOKING_INITIAL_STATUS="+cfg.BookingInitialStatus)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %v", invalid)
	}

	// Required fields (バックエンド依存)
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.KVBackend == BackendRedis && cfg.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.RedisPassword = getEnvString("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.SeedDemoData = getEnvBool("SEED_DEMO_DATA", true)
	cfg.CompletionInterval = getEnvDuration("COMPLETION_INTERVAL", time.Hour)
	cfg.CatalogURL = getEnvString("CATALOG_URL", "")
	cfg.CatalogFetchTimeout = getEnvDuration("CATALOG_FETCH_TIMEOUT", 10*time.Second)
	cfg.CatalogMaxSize = getEnvInt64("CATALOG_MAX_SIZE", 5242880)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.LogLevel = strings.ToLower(getEnvString("LOG_LEVEL", "info"))
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.ClientCookieMaxAge = getEnvInt("CLIENT_COOKIE_MAX_AGE", 365*24*60*60)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	// 間隔・上限値は正の値のみ受け付ける
	if cfg.CompletionInterval <= 0 {
		invalid = append(invalid, "COMPLETION_INTERVAL="+cfg.CompletionInterval.String())
	}
	if cfg.CatalogFetchTimeout <= 0 {
		invalid = append(invalid, "CATALOG_FETCH_TIMEOUT="+cfg.CatalogFetchTimeout.String())
	}
	if cfg.CatalogMaxSize <= 0 {
		invalid = append(invalid, "CATALOG_MAX_SIZE="+strconv.FormatInt(cfg.CatalogMaxSize, 10))
	}
	if cfg.RateLimitGeneral <= 0 {
		invalid = append(invalid, "RATE_LIMIT_GENERAL="+strconv.Itoa(cfg.RateLimitGeneral))
	}
	if cfg.RateLimitLogin <= 0 {
		invalid = append(invalid, "RATE_LIMIT_LOGIN="+strconv.Itoa(cfg.RateLimitLogin))
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %v", invalid)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
