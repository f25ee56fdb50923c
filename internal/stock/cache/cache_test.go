package cache

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// memoryRedis answers the commands the cache sends from a map, so the
// client never dials
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryClient(t *testing.T) (*redis.Client, *memoryRedis) {
	t.Helper()
	m := &memoryRedis{data: map[string]string{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(m)
	t.Cleanup(func() { _ = client.Close() })
	return client, m
}

func (m *memoryRedis) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (m *memoryRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (m *memoryRedis) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		args := cmd.Args()
		switch cmd.Name() {
		case "get":
			v, ok := m.data[args[1].(string)]
			if !ok {
				return redis.Nil
			}
			cmd.(*redis.StringCmd).SetVal(v)
		case "incr":
			key := args[1].(string)
			n, _ := strconv.ParseInt(m.data[key], 10, 64)
			n++
			m.data[key] = strconv.FormatInt(n, 10)
			cmd.(*redis.IntCmd).SetVal(n)
		case "scan":
			var keys []string
			for k := range m.data {
				if strings.HasPrefix(k, keyPrefix) {
					keys = append(keys, k)
				}
			}
			cmd.(*redis.ScanCmd).SetVal(keys, 0)
		case "del":
			for _, k := range args[1:] {
				delete(m.data, k.(string))
			}
			cmd.(*redis.IntCmd).SetVal(int64(len(args) - 1))
		case "evalsha":
			// evalsha sha 2 key genKey gen body ttl
			key, gk := args[3].(string), args[4].(string)
			current, ok := m.data[gk]
			if !ok {
				current = "0"
			}
			if current != args[5].(string) {
				cmd.(*redis.Cmd).SetVal(int64(0))
				return nil
			}
			m.data[key] = string(args[6].([]byte))
			cmd.(*redis.Cmd).SetVal(int64(1))
		default:
			return fmt.Errorf("unexpected command %q", cmd.Name())
		}
		return nil
	}
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
}

func TestMiddleware_DisabledPassesThrough(t *testing.T) {
	c := New(nil, 0)
	calls := 0
	h := c.Middleware(okHandler(&calls))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lots", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if rec.Header().Get("X-Cache") != "" {
			t.Fatalf("disabled cache must not set X-Cache")
		}
	}
	if calls != 2 {
		t.Fatalf("expected both requests to reach the handler, got %d", calls)
	}
	if err := c.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate on disabled cache: %v", err)
	}
}

func TestMiddleware_UnreachableRedisStillServes(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	calls := 0
	h := New(client, time.Minute).Middleware(okHandler(&calls))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("expected handler to serve the request, status=%d calls=%d", rec.Code, calls)
	}
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("X-Cache = %q, want MISS", rec.Header().Get("X-Cache"))
	}
}

func TestCacheKey_VariesByCaller(t *testing.T) {
	a := httptest.NewRequest(http.MethodGet, "/api/lots?limit=5", nil)
	a.Header.Set("Authorization", "Bearer a")
	b := httptest.NewRequest(http.MethodGet, "/api/lots?limit=5", nil)
	b.Header.Set("Authorization", "Bearer b")

	if cacheKey(a) == cacheKey(b) {
		t.Fatal("different callers must not share a cache entry")
	}
	if cacheKey(a) != cacheKey(a.Clone(context.Background())) {
		t.Fatal("cache key must be stable")
	}
}

func TestMiddleware_HitAfterMissAndInvalidate(t *testing.T) {
	client, _ := newMemoryClient(t)
	c := New(client, time.Minute)
	calls := 0
	h := c.Middleware(okHandler(&calls))

	get := func() string {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lots", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != `{"success":true}` {
			t.Fatalf("status %d body %q", rec.Code, rec.Body.String())
		}
		return rec.Header().Get("X-Cache")
	}

	if got := get(); got != "MISS" {
		t.Fatalf("first request X-Cache = %q, want MISS", got)
	}
	if got := get(); got != "HIT" || calls != 1 {
		t.Fatalf("second request X-Cache = %q calls = %d, want HIT from cache", got, calls)
	}

	if err := c.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if got := get(); got != "MISS" || calls != 2 {
		t.Fatalf("after invalidate X-Cache = %q calls = %d, want MISS", got, calls)
	}
}

func TestMiddleware_InvalidationDuringRequestSkipsStore(t *testing.T) {
	client, mem := newMemoryClient(t)
	c := New(client, time.Minute)

	calls := 0
	// the handler reads stale data, then a write commits and invalidates
	// before the response is stored
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"stale":true}`))
		if calls == 1 {
			if err := c.Invalidate(r.Context()); err != nil {
				t.Errorf("invalidate: %v", err)
			}
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if _, ok := mem.get(cacheKey(req)); ok {
		t.Fatal("response read before an invalidation must not be stored")
	}
	if gen, _ := mem.get(genKey); gen != "1" {
		t.Fatalf("generation = %q, want 1", gen)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if rec.Header().Get("X-Cache") != "MISS" || calls != 2 {
		t.Fatalf("X-Cache = %q calls = %d, want a fresh read", rec.Header().Get("X-Cache"), calls)
	}
	if _, ok := mem.get(cacheKey(req)); !ok {
		t.Fatal("response read after the invalidation should be stored")
	}
}
