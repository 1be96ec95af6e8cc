// Package health serves the Kubernetes liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/hello-kube/internal/platform/logging"
)

// CheckTimeout bounds each readiness check.
const CheckTimeout = 2 * time.Second

const (
	statusHealthy     = "healthy"
	statusReady       = "ready"
	statusUnavailable = "unavailable"
	checkOK           = "ok"
)

// Response is the payload for both probe endpoints.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Check reports whether a dependency can serve traffic.
type Check func(ctx context.Context) error

// Handler is the liveness probe. It succeeds whenever the process can serve HTTP.
func Handler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Response{Status: statusHealthy})
}

// Readiness runs the registered dependency checks on every request.
type Readiness struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewReadiness returns a readiness probe with no checks; it reports ready until one is added.
func NewReadiness() *Readiness {
	return &Readiness{checks: map[string]Check{}, timeout: CheckTimeout}
}

// Add registers check under name, replacing any previous check with that name.
func (rd *Readiness) Add(name string, check Check) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	rd.checks[name] = check
}

// ServeHTTP answers 200 when every check passes and 503 otherwise.
func (rd *Readiness) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	results := rd.run(r.Context())

	resp := Response{Status: statusReady, Checks: results}
	status := http.StatusOK
	for name, result := range results {
		if result == checkOK {
			continue
		}
		resp.Status = statusUnavailable
		status = http.StatusServiceUnavailable
		applog.LogWarn(r.Context(), "readiness check failed", zap.String("check", name), zap.String("error", result))
	}
	writeJSON(w, status, resp)
}

func (rd *Readiness) run(ctx context.Context) map[string]string {
	rd.mu.RLock()
	defer rd.mu.RUnlock()

	results := make(map[string]string, len(rd.checks))
	if len(rd.checks) == 0 {
		return results
	}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range rd.checks {
		wg.Go(func() {
			cctx, cancel := context.WithTimeout(ctx, rd.timeout)
			defer cancel()
			result := checkOK
			if err := check(cctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
		})
	}
	wg.Wait()
	return results
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
