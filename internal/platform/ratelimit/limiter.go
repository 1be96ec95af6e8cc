// Package ratelimit implements a per-client sliding window limiter stored in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows at most limit requests per key within any window long span.
type Limiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// New returns a Limiter that stores its sorted sets under "<prefix>:<key>".
func New(rdb redis.Scripter, limit int, window time.Duration, prefix string) *Limiter {
	return &Limiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: prefix,
		now:    time.Now,
	}
}

// Limit returns the configured number of requests per window.
func (l *Limiter) Limit() int {
	return l.limit
}

// Allow records a request for key and reports whether it fits in the window.
// Callers decide what to do on error; the middleware fails open.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UnixMilli()
	vals, err := slidingWindow.Run(ctx, l.rdb,
		[]string{l.key(key)},
		now, l.window.Milliseconds(), l.limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: run script: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("ratelimit: unexpected script result %v", vals)
	}
	return Result{
		Allowed:    vals[0] == 1,
		Remaining:  int(vals[1]),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (l *Limiter) key(k string) string {
	if l.prefix == "" {
		return k
	}
	return l.prefix + ":" + k
}
