package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-ledger/pkg/logger"
)

// RateLimiter throttles mutations per caller with a Redis sliding window.
// A nil client or a non-positive limit disables it.
type RateLimiter struct {
	redis       *redis.Client
	maxRequests int
	window      time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redisClient *redis.Client, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:       redisClient,
		maxRequests: maxRequests,
		window:      window,
	}
}

func (rl *RateLimiter) enabled() bool {
	return rl != nil && rl.redis != nil && rl.maxRequests > 0
}

// Middleware rejects callers over the limit with 429. Redis failures let the
// request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		identifier := callerIdentifier(r)
		allowed, remaining, resetTime, err := rl.checkLimit(r.Context(), identifier)
		if err != nil {
			logger.Error(r.Context()).
				Err(err).
				Str("identifier", identifier).
				Msg("Rate limiter error")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			logger.Warn(r.Context()).
				Str("identifier", identifier).
				Int("limit", rl.maxRequests).
				Msg("Rate limit exceeded")

			respondJSON(w, http.StatusTooManyRequests, Response{
				Success: false,
				Error:   fmt.Sprintf("Too many requests. Try again in %v", time.Until(resetTime).Round(time.Second)),
				Code:    "rate_limited",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func callerIdentifier(r *http.Request) string {
	if claims, ok := ClaimsFrom(r.Context()); ok {
		return fmt.Sprintf("user:%d", claims.UserID)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// windowMember names one request in the window; requests in the same
// nanosecond still count separately
func windowMember(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())
}

// checkLimit records the request and reports whether it fits the window
func (rl *RateLimiter) checkLimit(ctx context.Context, identifier string) (bool, int, time.Time, error) {
	key := "ratelimit:stock:" + identifier
	now := time.Now()
	windowStart := now.Add(-rl.window)

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: windowMember(now),
	})
	pipe.Expire(ctx, key, rl.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := countCmd.Val()
	remaining := rl.maxRequests - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}

	return count < int64(rl.maxRequests), remaining, now.Add(rl.window), nil
}
