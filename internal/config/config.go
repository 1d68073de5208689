package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/onexay/gitobs/internal/webhook"
)

// NotifyBackend enumerates where webhook deliveries are published.
type NotifyBackend string

const (
	// NotifyBackendMemory keeps deliveries in-process.
	NotifyBackendMemory NotifyBackend = "memory"
	// NotifyBackendRedis publishes deliveries to Redis/KeyDB.
	NotifyBackendRedis NotifyBackend = "redis"
)

// Config aggregates runtime configuration.
type Config struct {
	APIAddr   string
	RateLimit RateLimitConfig
	Notify    NotifyConfig
	Log       LogConfig
	HooksFile string
}

// RateLimitConfig bounds API request throughput. A zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// NotifyConfig contains delivery backend selection and nested settings.
type NotifyConfig struct {
	Backend     NotifyBackend
	Redis       webhook.RedisConfig
	ArchivePath string
	Timeout     time.Duration
}

// LogConfig selects log level and an optional rotating log file.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from environment variables.
func Load() Config {
	backend := NotifyBackend(strings.ToLower(envDefault("NOTIFY_BACKEND", string(NotifyBackendMemory))))

	return Config{
		APIAddr: envDefault("API_ADDR", ":8080"),
		RateLimit: RateLimitConfig{
			RPS:   envFloat("API_RATE_LIMIT", 0),
			Burst: envInt("API_RATE_BURST", 20),
		},
		Notify: NotifyConfig{
			Backend: backend,
			Redis: webhook.RedisConfig{
				Addr:          os.Getenv("REDIS_ADDR"),
				Username:      os.Getenv("REDIS_USERNAME"),
				Password:      os.Getenv("REDIS_PASSWORD"),
				Database:      envInt("REDIS_DB", 0),
				ChannelPrefix: envDefault("REDIS_CHANNEL_PREFIX", "gitobs"),
			},
			ArchivePath: os.Getenv("ARCHIVE_PATH"),
			Timeout:     envDuration("NOTIFY_TIMEOUT", 2*time.Second),
		},
		Log: LogConfig{
			Level:      envDefault("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  envInt("LOG_MAX_SIZE", 10),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: envInt("LOG_MAX_AGE", 30),
		},
		HooksFile: os.Getenv("HOOKS_FILE"),
	}
}

func envDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}
