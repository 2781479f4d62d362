// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for storage, cache, sync, and HTTP.
type Config struct {
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisPassword   string
	SyncEnabled     bool
	SyncOnStart     bool
	CacheTTL        time.Duration
	CacheKeyVersion string
	BatchSize       int
	BatchDelay      time.Duration
	StreamRetryMax  int
	StreamRetryBase time.Duration
	NotifierBuffer  int
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Environment     string
	LogLevel        string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getenv("MONGO_DB", "retail"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		SyncEnabled:     boolenv("ENABLE_PRODUCT_SYNC", false),
		SyncOnStart:     boolenv("SYNC_ON_START", false),
		CacheTTL:        durenvs("SYNC_CACHE_TTL_SEC", 3600),
		CacheKeyVersion: getenv("SYNC_CACHE_KEY_VERSION", "v1"),
		BatchSize:       atoienv("SYNC_BATCH_SIZE", 10),
		BatchDelay:      durenvms("SYNC_BATCH_DELAY_MS", 50),
		StreamRetryMax:  atoienv("STREAM_RETRY_MAX", 5),
		StreamRetryBase: durenvms("STREAM_RETRY_BASE_MS", 500),
		NotifierBuffer:  atoienv("NOTIFIER_BUFFER", 128),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		Environment:     getenv("APP_ENV", "development"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}
