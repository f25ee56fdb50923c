package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/stock-ledger/pkg/database"
)

// Lock backends
const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// Config holds the stock service configuration
type Config struct {
	ServiceName    string
	Environment    string
	LogLevel       string
	HTTPPort       string
	GRPCPort       string
	JWTSecret      string
	JaegerEndpoint string

	Database database.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	// RateLimit caps mutations per caller per minute; 0 disables it
	RateLimit int

	// LockBackend selects the per-lot lock: "local" for a single instance,
	// "redis" when several instances share one database.
	LockBackend string
	LockTTL     time.Duration

	KafkaBrokers []string
	KafkaGroupID string
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads .env (when present) and the process environment
func Load() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "stock-service"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPPort:       getEnv("HTTP_PORT", "8084"),
		GRPCPort:       getEnv("GRPC_PORT", "9094"),
		JWTSecret:      getEnv("JWT_SECRET", "devsecret"),
		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stockdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		RateLimit:     getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		LockBackend:   getEnv("LOCK_BACKEND", LockBackendLocal),
		LockTTL:       getEnvDuration("LOCK_TTL", 10*time.Second),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "stock-service"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
