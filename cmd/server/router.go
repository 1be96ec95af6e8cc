package main

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/hello-kube/internal/http/health"
	"github.com/janisto/hello-kube/internal/http/root"
	"github.com/janisto/hello-kube/internal/http/v1/routes"
	applog "github.com/janisto/hello-kube/internal/platform/logging"
	appmiddleware "github.com/janisto/hello-kube/internal/platform/middleware"
	"github.com/janisto/hello-kube/internal/platform/ratelimit"
	"github.com/janisto/hello-kube/internal/platform/respond"
)

const (
	docsPath     = "/api-docs"
	healthPath   = "/health"
	readyPath    = "/ready"
	metricsPath  = "/metrics"
	maxBodyBytes = 1 << 20 // 1 MB
)

// probePaths are polled by Kubernetes and Prometheus; they skip rate limiting and
// are access-logged at debug level.
var probePaths = []string{healthPath, readyPath, metricsPath}

func newRouter(deps dependencies) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	mw := []func(http.Handler) http.Handler{
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For and X-Real-IP. Only run behind a trusted
		// proxy or ingress, otherwise clients can choose their rate limit key.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxBodyBytes),
		applog.RequestLogger(),
		applog.AccessLogger(probePaths...),
	}
	if deps.metrics != nil {
		mw = append(mw, deps.metrics.Middleware())
	}
	mw = append(mw, respond.Recoverer())
	if deps.limiter != nil {
		opts := ratelimit.Options{SkipPaths: probePaths}
		if deps.metrics != nil {
			opts.Observe = deps.metrics.ObserveRateLimit
		}
		mw = append(mw, ratelimit.Middleware(deps.limiter, opts))
	}
	router.Use(mw...)

	router.Get(healthPath, health.Handler)
	router.Method(http.MethodGet, readyPath, deps.readiness)
	if deps.metrics != nil {
		router.Method(http.MethodGet, metricsPath, deps.metrics.Handler())
	}

	cfg := huma.DefaultConfig("Hello Kube API", Version)
	cfg.DocsPath = docsPath
	api := humachi.New(router, cfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)

	root.Register(api, deps.greeter)
	routes.Register(api, deps.greeter)
	return router
}

// addCBORContent documents application/cbor wherever an operation accepts or returns JSON.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}
