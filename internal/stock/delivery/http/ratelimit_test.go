package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-ledger/pkg/auth"
)

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })

	for _, rl := range []*RateLimiter{nil, NewRateLimiter(nil, 10, time.Minute)} {
		rec := httptest.NewRecorder()
		rl.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales", nil))
		if rec.Header().Get("X-RateLimit-Limit") != "" {
			t.Fatal("disabled limiter must not set headers")
		}
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	calls := 0
	h := NewRateLimiter(client, 1, time.Minute).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales", nil))
	if calls != 1 {
		t.Fatalf("request should pass when the limiter cannot reach redis")
	}
}

func TestCallerIdentifier(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/sales", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	if got := callerIdentifier(r); got != "ip:10.0.0.7" {
		t.Fatalf("anonymous identifier = %q", got)
	}

	ctx := context.WithValue(r.Context(), claimsKey, &auth.Claims{UserID: 42})
	if got := callerIdentifier(r.WithContext(ctx)); got != "user:42" {
		t.Fatalf("authenticated identifier = %q", got)
	}
}

func TestWindowMember_UniqueWithinInstant(t *testing.T) {
	now := time.Unix(0, 1700000000123456789)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		m := windowMember(now)
		if seen[m] {
			t.Fatalf("duplicate member %q", m)
		}
		seen[m] = true
		if !strings.HasPrefix(m, "1700000000123456789-") {
			t.Fatalf("member %q does not start with the timestamp", m)
		}
	}
}
