package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "LOCK_BACKEND", "CACHE_TTL", "KAFKA_BROKERS", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPPort != "8084" || cfg.LockBackend != LockBackendLocal {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.CacheTTL != 5*time.Minute || cfg.RateLimit != 60 {
		t.Fatalf("cache ttl = %v, rate limit = %d", cfg.CacheTTL, cfg.RateLimit)
	}
	if cfg.KafkaBrokers != nil {
		t.Fatalf("brokers = %v, want none", cfg.KafkaBrokers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOCK_BACKEND", LockBackendRedis)
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")

	cfg := Load()
	if cfg.IsDevelopment() {
		t.Fatal("production must not be development")
	}
	if cfg.LockBackend != LockBackendRedis || cfg.LockTTL != 3*time.Second || cfg.RedisDB != 2 {
		t.Fatalf("unexpected lock config %+v", cfg)
	}
	if want := []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Fatalf("brokers = %v, want %v", cfg.KafkaBrokers, want)
	}
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	if got := getEnvDuration("CACHE_TTL", time.Minute); got != time.Minute {
		t.Fatalf("got %v, want fallback", got)
	}
}
