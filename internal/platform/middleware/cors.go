// Package middleware contains the chi middleware shared by every route of the service.
package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORS allows any origin to call the read-only endpoints and the hello API.
// Rate limit and request ID headers are exposed so browser clients can read them.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			chimiddleware.RequestIDHeader,
			"traceparent",
		},
		ExposedHeaders: []string{
			"Link",
			"Location",
			chimiddleware.RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		MaxAge: 300,
	})
}
