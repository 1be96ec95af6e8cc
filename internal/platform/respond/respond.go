// Package respond writes RFC 9457 problem responses for errors raised outside huma
// operations: unmatched routes, disallowed methods, panics and rate limiting.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/hello-kube/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	errorSchemaPath = "/schemas/ErrorModel.json"

	detailNotFound        = "resource not found"
	detailInternal        = "internal server error"
	detailTooManyRequests = "rate limit exceeded"
)

// problem is huma's ErrorModel plus the $schema link huma adds to its own error bodies.
type problem struct {
	Schema string `json:"$schema,omitempty"`
	huma.ErrorModel
}

// NotFoundHandler answers unmatched routes with a 404 problem.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, detailNotFound)
	}
}

// MethodNotAllowedHandler answers with a 405 problem and an Allow header listing the
// methods registered for the path.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// TooManyRequests writes a 429 problem. Retry-After is rounded up to whole seconds.
func TooManyRequests(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	secs := max(int(math.Ceil(retryAfter.Seconds())), 1)
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeProblem(w, r, http.StatusTooManyRequests, detailTooManyRequests)
}

// Recoverer turns panics into 500 problems. http.ErrAbortHandler is re-panicked so the
// server aborts the connection, and nothing is written once the handler sent headers.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(r.Context(), "panic recovered", panicError(rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				if rw.wroteHeader {
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, detailInternal)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("%v", rec)
}

// responseWriter records whether the status line was already sent.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	schema := schemaURL(r)
	body := problem{
		Schema: schema,
		ErrorModel: huma.ErrorModel{
			Title:    http.StatusText(status),
			Status:   status,
			Detail:   detail,
			Instance: r.URL.RequestURI(),
		},
	}

	h := w.Header()
	ensureVary(h, "Origin", "Accept")
	h.Set("Link", "<"+schema+`>; rel="describedBy"`)

	if selectFormat(r.Header.Get("Accept")) {
		data, err := cbor.Marshal(body)
		if err != nil {
			applog.LogError(r.Context(), "encode problem", err, zap.Int("status", status))
			http.Error(w, http.StatusText(status), status)
			return
		}
		h.Set("Content-Type", contentTypeProblemCBOR)
		w.WriteHeader(status)
		_, _ = w.Write(data)
		return
	}

	h.Set("Content-Type", contentTypeProblemJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		applog.LogWarn(r.Context(), "write problem", zap.Int("status", status), zap.Error(err))
	}
}

func schemaURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + errorSchemaPath
}

// ensureVary appends values to Vary, skipping any already listed.
func ensureVary(h http.Header, values ...string) {
	seen := map[string]struct{}{}
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			seen[strings.ToLower(strings.TrimSpace(part))] = struct{}{}
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		h.Add("Vary", v)
	}
}

// allowedMethods probes chi's route tree for every method registered on the request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.RawPath
		if routePath == "" {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	var allowed []string
	for _, method := range []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
