package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/janisto/hello-kube/internal/config"
	"github.com/janisto/hello-kube/internal/greeting"
	"github.com/janisto/hello-kube/internal/http/health"
	"github.com/janisto/hello-kube/internal/platform/kv"
	applog "github.com/janisto/hello-kube/internal/platform/logging"
	"github.com/janisto/hello-kube/internal/platform/metrics"
	"github.com/janisto/hello-kube/internal/platform/ratelimit"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	defer func() {
		_ = applog.Sync()
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogFatal(context.Background(), "invalid configuration", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogFatal(context.Background(), "invalid log level", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		applog.LogError(context.Background(), "server failed", err)
		stop()
		_ = applog.Sync()
		os.Exit(1)
	}
}

// dependencies are the collaborators newRouter wires. Nil metrics or limiter disable
// the corresponding middleware.
type dependencies struct {
	greeter   *greeting.Greeter
	readiness *health.Readiness
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
}

// buildDependencies creates everything the router needs from cfg. An unreachable Redis is
// logged and skipped so the service still answers GET / without it.
func buildDependencies(ctx context.Context, cfg config.Config) (dependencies, func(), error) {
	g, err := greeting.New(cfg.Greeting)
	if err != nil {
		return dependencies{}, nil, err
	}
	deps := dependencies{greeter: g, readiness: health.NewReadiness()}
	cleanup := func() {}

	if cfg.MetricsEnabled {
		deps.metrics = metrics.New(Version)
	}

	if !cfg.Redis.Enabled() {
		applog.LogInfo(ctx, "redis not configured, rate limiting disabled")
		return deps, cleanup, nil
	}
	rdb, err := kv.Connect(ctx, cfg.Redis)
	if err != nil {
		applog.LogWarn(ctx, "redis unavailable, rate limiting disabled",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return deps, cleanup, nil
	}
	cleanup = closeRedis(rdb)
	deps.readiness.Add("redis", kv.Check(rdb))
	if cfg.RateLimit.Enabled {
		deps.limiter = ratelimit.New(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Prefix)
		applog.LogInfo(ctx, "rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests), zap.Duration("window", cfg.RateLimit.Window))
	}
	return deps, cleanup, nil
}

func closeRedis(rdb *redis.Client) func() {
	return func() {
		if err := rdb.Close(); err != nil {
			applog.LogWarn(context.Background(), "redis close error", zap.Error(err))
		}
	}
}

// run serves until ctx is cancelled, then drains connections within cfg.ShutdownTimeout.
func run(ctx context.Context, cfg config.Config) error {
	deps, cleanup, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := newServer(cfg.Addr(), newRouter(deps))
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return serve(ctx, srv, ln, cfg.ShutdownTimeout)
}

func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening",
			zap.String("addr", ln.Addr().String()), zap.String("version", Version))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}
