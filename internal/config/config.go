package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds the whole application configuration, populated from
// environment variables (a .env file is loaded by main when present).
type Config struct {
	App        AppConfig
	Redis      RedisConfig
	Queue      QueueConfig
	Search     SearchConfig
	Pagination PaginationConfig
	Tracing    TracingConfig
}

type AppConfig struct {
	Name        string // used in the X-<name>-alert headers
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type QueueConfig struct {
	Concurrency   int
	RebuildCron   string // empty disables the scheduled rebuild
	RepairEnabled bool   // enqueue a reindex task when a mirror write fails
	HealthPort    string

	RebuildLockTTL time.Duration
}

type SearchConfig struct {
	Language           string // text search configuration, e.g. simple, english
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

type PaginationConfig struct {
	DefaultSize int
	MaxSize     int
}

type TracingConfig struct {
	Endpoint    string // OTLP/HTTP endpoint, empty disables export
	SampleRatio float64
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "bookshelfApp"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Queue: QueueConfig{
			Concurrency:   getEnvInt("QUEUE_CONCURRENCY", 5),
			RebuildCron:   getEnv("QUEUE_REBUILD_CRON", "0 3 * * *"),
			RepairEnabled: getEnvBool("QUEUE_REPAIR_ENABLED", true),
			HealthPort:    getEnv("WORKER_HEALTH_PORT", "9999"),

			RebuildLockTTL: getEnvDuration("QUEUE_REBUILD_LOCK_TTL", 15*time.Minute),
		},
		Search: SearchConfig{
			Language:           getEnv("SEARCH_LANGUAGE", "simple"),
			BreakerMaxFailures: uint32(getEnvInt("SEARCH_BREAKER_MAX_FAILURES", 5)),
			BreakerTimeout:     getEnvDuration("SEARCH_BREAKER_TIMEOUT", 30*time.Second),
		},
		Pagination: PaginationConfig{
			DefaultSize: getEnvInt("PAGINATION_DEFAULT_SIZE", 20),
			MaxSize:     getEnvInt("PAGINATION_MAX_SIZE", 100),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			SampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1.0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}
	if strings.ContainsAny(c.App.Name, " \t\r\n:") {
		return fmt.Errorf("APP_NAME must be a valid header token, got %q", c.App.Name)
	}
	if c.Pagination.DefaultSize <= 0 || c.Pagination.MaxSize <= 0 {
		return fmt.Errorf("pagination sizes must be positive")
	}
	if c.Pagination.DefaultSize > c.Pagination.MaxSize {
		return fmt.Errorf("PAGINATION_DEFAULT_SIZE (%d) exceeds PAGINATION_MAX_SIZE (%d)",
			c.Pagination.DefaultSize, c.Pagination.MaxSize)
	}
	if c.Queue.Concurrency <= 0 {
		return fmt.Errorf("QUEUE_CONCURRENCY must be positive")
	}
	if c.Queue.RebuildCron != "" {
		if _, err := cron.ParseStandard(c.Queue.RebuildCron); err != nil {
			return fmt.Errorf("invalid QUEUE_REBUILD_CRON: %w", err)
		}
	}
	if c.Queue.RebuildLockTTL <= 0 {
		return fmt.Errorf("QUEUE_REBUILD_LOCK_TTL must be positive")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be within [0,1]")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
