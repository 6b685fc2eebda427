package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l, err := New(rdb, "test:ratelimit", limit, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	fixed := time.Date(2024, 5, 1, 10, 0, 30, 0, time.UTC)
	l.WithClock(func() time.Time { return fixed })
	return l, mr
}

func TestLimiterBlocksAfterQuota(t *testing.T) {
	l, _ := newLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should pass: ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatalf("third request should be blocked")
	}

	ok, _ = l.Allow(ctx, "5.6.7.8")
	if !ok {
		t.Fatalf("other keys have their own quota")
	}
}

func TestLimiterSetsWindowExpiry(t *testing.T) {
	l, mr := newLimiter(t, 1)
	if _, err := l.Allow(context.Background(), "ip"); err != nil {
		t.Fatalf("allow: %v", err)
	}
	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one counter key, got %v", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestLimiterReportsRedisErrors(t *testing.T) {
	l, mr := newLimiter(t, 1)
	mr.Close()

	ok, err := l.Allow(context.Background(), "ip")
	if err == nil {
		t.Fatalf("expected an error with redis down")
	}
	if !ok {
		t.Fatalf("redis errors should not block callers")
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	if _, err := New(nil, "", 1, time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	if _, err := New(rdb, "", 0, time.Second); err == nil {
		t.Fatalf("expected error for zero limit")
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, _ := newLimiter(t, 1)

	r := gin.New()
	r.POST("/api/contacts", Middleware(l), func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/contacts", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusCreated {
		t.Fatalf("first request: %d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", code)
	}
}

func TestMiddlewareNilLimiterPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", Middleware(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
