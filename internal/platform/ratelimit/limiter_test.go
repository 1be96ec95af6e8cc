package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := &fakeClock{t: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	l := New(rdb, limit, window, "rl")
	l.now = clock.now
	return l, mr, clock
}

func TestAllowWithinLimit(t *testing.T) {
	l, _, _ := newTestLimiter(t, 3, time.Second)
	ctx := context.Background()

	for i := range 3 {
		res, err := l.Allow(ctx, "127.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should have been allowed", i+1)
		}
		if want := 3 - i - 1; res.Remaining != want {
			t.Fatalf("request %d: expected remaining %d, got %d", i+1, want, res.Remaining)
		}
	}
}

func TestAllowBlocksOverLimit(t *testing.T) {
	l, _, clock := newTestLimiter(t, 2, time.Second)
	ctx := context.Background()

	for range 2 {
		if res, _ := l.Allow(ctx, "127.0.0.1"); !res.Allowed {
			t.Fatal("expected request to be allowed")
		}
		clock.advance(100 * time.Millisecond)
	}

	res, err := l.Allow(ctx, "127.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Allowed {
		t.Fatal("third request should have been blocked")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected no remaining requests, got %d", res.Remaining)
	}
	// Oldest entry was recorded 200ms ago in a 1s window.
	if res.RetryAfter != 800*time.Millisecond {
		t.Fatalf("expected retry after 800ms, got %v", res.RetryAfter)
	}
}

func TestAllowAfterWindowSlides(t *testing.T) {
	l, mr, clock := newTestLimiter(t, 3, time.Second)
	ctx := context.Background()

	for range 3 {
		_, _ = l.Allow(ctx, "127.0.0.1")
	}
	if res, _ := l.Allow(ctx, "127.0.0.1"); res.Allowed {
		t.Fatal("4th request should have been blocked")
	}

	clock.advance(2 * time.Second)
	mr.FastForward(2 * time.Second)

	res, err := l.Allow(ctx, "127.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed || res.Remaining != 2 {
		t.Fatalf("expected request after window to be allowed with 2 remaining, got %+v", res)
	}
}

func TestBlockedRequestsAreNotRecorded(t *testing.T) {
	l, mr, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	for range 5 {
		_, _ = l.Allow(ctx, "10.0.0.1")
	}
	members, err := mr.ZMembers("rl:10.0.0.1")
	if err != nil {
		t.Fatalf("zmembers: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected only the allowed request to be stored, got %d", len(members))
	}
}

func TestKeysAreIsolated(t *testing.T) {
	l, mr, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "a"); !res.Allowed {
		t.Fatal("expected first key to be allowed")
	}
	if res, _ := l.Allow(ctx, "b"); !res.Allowed {
		t.Fatal("expected second key to be allowed independently")
	}
	if !mr.Exists("rl:a") || !mr.Exists("rl:b") {
		t.Fatalf("expected prefixed keys, got %v", mr.Keys())
	}
	if ttl := mr.TTL("rl:a"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected key TTL within the window, got %v", ttl)
	}
}

func TestAllowRedisDown(t *testing.T) {
	l, mr, _ := newTestLimiter(t, 3, time.Second)
	mr.Close()

	if _, err := l.Allow(context.Background(), "127.0.0.1"); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestKeyWithoutPrefix(t *testing.T) {
	l := New(nil, 1, time.Second, "")
	if got := l.key("ip"); got != "ip" {
		t.Fatalf("expected bare key, got %q", got)
	}
	if l.Limit() != 1 {
		t.Fatalf("expected limit 1, got %d", l.Limit())
	}
}
