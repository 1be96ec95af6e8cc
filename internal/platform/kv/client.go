// Package kv connects to the optional Redis instance backing the rate limiter.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/janisto/hello-kube/internal/config"
)

// PingTimeout bounds the connectivity check made by Connect and Check.
const PingTimeout = 2 * time.Second

// ErrNotConfigured is returned by Connect when no Redis address is set.
var ErrNotConfigured = errors.New("kv: redis address not configured")

// Connect builds a client for cfg and pings it. On a failed ping the client is closed.
func Connect(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := Check(client)(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Check returns a readiness check that pings client.
func Check(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, PingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("kv: ping redis: %w", err)
		}
		return nil
	}
}
