package ratelimit

import (
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	applog "github.com/janisto/hello-kube/internal/platform/logging"
	"github.com/janisto/hello-kube/internal/platform/respond"
)

// Decisions passed to Options.Observe.
const (
	DecisionAllowed = "allowed"
	DecisionBlocked = "blocked"
	DecisionError   = "error"
)

// Options tunes Middleware.
type Options struct {
	// SkipPaths are served without consulting the limiter (probes, metrics).
	SkipPaths []string
	// Observe, when set, receives the decision for every limited request.
	Observe func(decision string)
}

// Middleware limits requests per client IP. It expects chi's RealIP to have run so
// RemoteAddr holds the client address. Redis errors let the request through.
func Middleware(l *Limiter, opts Options) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}
	observe := opts.Observe
	if observe == nil {
		observe = func(string) {}
	}
	limit := strconv.Itoa(l.Limit())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				observe(DecisionError)
				applog.LogWarn(r.Context(), "rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				observe(DecisionBlocked)
				applog.LogInfo(r.Context(), "rate limit exceeded", zap.Duration("retryAfter", res.RetryAfter))
				respond.TooManyRequests(w, r, res.RetryAfter)
				return
			}
			observe(DecisionAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
