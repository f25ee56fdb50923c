// Package cache keeps GET responses of the stock API in Redis and drops
// them whenever stock changes.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

const (
	keyPrefix = "cache:stock:"
	// genKey counts invalidations; it sits outside keyPrefix so Invalidate
	// never deletes it
	genKey = "cache:stock-gen"
)

// storeScript writes a response only if no invalidation ran since the
// request read the generation
var storeScript = redis.NewScript(`
if (redis.call("GET", KEYS[2]) or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache is a Redis response cache. A nil client disables it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache; ttl <= 0 defaults to five minutes
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether responses are cached
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Middleware serves cached 200 responses to GET requests
func (c *Cache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.Enabled() || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := cacheKey(r)

		cached, err := c.client.Get(ctx, key).Bytes()
		if err == nil && len(cached) > 0 {
			logger.Debug(ctx).Str("path", r.URL.Path).Str("cache_key", key).Msg("Cache hit")
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		gen, genErr := c.generation(ctx)

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK {
			return
		}
		if genErr != nil {
			logger.Warn(ctx).Err(genErr).Str("cache_key", key).Msg("Failed to read cache generation")
			return
		}
		stored, err := storeScript.Run(ctx, c.client, []string{key, genKey},
			gen, rec.body.Bytes(), c.ttl.Milliseconds()).Int()
		if err != nil {
			logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to cache response")
			return
		}
		if stored == 0 {
			logger.Debug(ctx).Str("cache_key", key).Msg("Cache invalidated during request, response not stored")
		}
	})
}

// generation returns the invalidation counter, "0" before the first one
func (c *Cache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, genKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// Invalidate drops every cached stock response. The generation is bumped
// first so requests already in flight do not store what they read.
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
		logger.Debug(ctx).Int("count", len(keys)).Msg("Cache invalidated")
	}
	return nil
}

// OnChange adapts Invalidate to a change subscriber
func (c *Cache) OnChange(ctx context.Context, _ domain.ChangeEvent) error {
	return c.Invalidate(ctx)
}

// cacheKey hashes method, path, query and caller; responses differ by role
func cacheKey(r *http.Request) string {
	components := fmt.Sprintf("%s:%s:%s:%s",
		r.Method,
		r.URL.Path,
		r.URL.RawQuery,
		r.Header.Get("Authorization"),
	)
	hash := sha256.Sum256([]byte(components))
	return keyPrefix + hex.EncodeToString(hash[:])
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
